// Package tournament exposes the tournament lifecycle over REST: creation,
// roster joining, starting the bracket, and bracket inspection.
package tournament

import (
	dmn "github.com/beka-birhanu/pong-arena/domain"
)

// CreateRequest creates a new tournament.
type CreateRequest struct {
	Name string `json:"name" binding:"required"`
}

// TournamentResponse is the REST view of a tournament.
type TournamentResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	CreatorID    string   `json:"creatorId"`
	Status       string   `json:"status"`
	Participants []string `json:"participants"`
}

// MatchResponse is the REST view of a bracket match.
type MatchResponse struct {
	ID      string  `json:"id"`
	Round   int     `json:"round"`
	Player1 string  `json:"player1"`
	Player2 *string `json:"player2,omitempty"`
	Winner  *string `json:"winner,omitempty"`
	Status  string  `json:"status"`
}

// BracketResponse is a tournament together with all its matches.
type BracketResponse struct {
	Tournament TournamentResponse `json:"tournament"`
	Matches    []MatchResponse    `json:"matches"`
}

func newTournamentResponse(t *dmn.Tournament) TournamentResponse {
	participants := make([]string, 0, len(t.Participants))
	for _, p := range t.Participants {
		participants = append(participants, p.String())
	}
	return TournamentResponse{
		ID:           t.ID.String(),
		Name:         t.Name,
		CreatorID:    t.CreatorID.String(),
		Status:       string(t.Status),
		Participants: participants,
	}
}

func newMatchResponse(m *dmn.Match) MatchResponse {
	resp := MatchResponse{
		ID:      m.ID.String(),
		Round:   m.Round,
		Player1: m.Player1.String(),
		Status:  string(m.Status),
	}
	if m.Player2 != nil {
		p2 := m.Player2.String()
		resp.Player2 = &p2
	}
	if m.Winner != nil {
		w := m.Winner.String()
		resp.Winner = &w
	}
	return resp
}
