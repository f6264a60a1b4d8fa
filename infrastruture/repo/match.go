package repo

import (
	"context"
	"errors"

	dmn "github.com/beka-birhanu/pong-arena/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Match repository errors.
var (
	ErrMatchNotFound = errors.New("match not found")
)

// MatchRepo handles the persistence of bracket matches.
type MatchRepo struct {
	collection *mongo.Collection
}

// NewMatchRepo creates a new MatchRepo on the given collection.
func NewMatchRepo(client *mongo.Client, dbName, collectionName string) *MatchRepo {
	return &MatchRepo{
		collection: client.Database(dbName).Collection(collectionName),
	}
}

// ByID retrieves a match by its ID.
func (m *MatchRepo) ByID(ctx context.Context, id uuid.UUID) (*dmn.Match, error) {
	var match dmn.Match
	if err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&match); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrMatchNotFound
		}
		return nil, errors.New("unexpected error: " + err.Error())
	}
	return &match, nil
}

// ByTournament returns all matches of a tournament ordered by round.
func (m *MatchRepo) ByTournament(ctx context.Context, tournamentID uuid.UUID) ([]*dmn.Match, error) {
	opts := options.Find().SetSort(bson.D{{Key: "round", Value: 1}})
	cursor, err := m.collection.Find(ctx, bson.M{"tournamentId": tournamentID}, opts)
	if err != nil {
		return nil, errors.New("unexpected error: " + err.Error())
	}
	defer func() { _ = cursor.Close(ctx) }()

	var matches []*dmn.Match
	if err := cursor.All(ctx, &matches); err != nil {
		return nil, errors.New("unexpected error: " + err.Error())
	}
	return matches, nil
}

// CreateRound persists a full round of matches.
func (m *MatchRepo) CreateRound(ctx context.Context, matches []*dmn.Match) error {
	if len(matches) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(matches))
	for _, match := range matches {
		docs = append(docs, match)
	}
	if _, err := m.collection.InsertMany(ctx, docs); err != nil {
		return errors.New("unexpected error: " + err.Error())
	}
	return nil
}

// SetWinner marks a match completed with the given winner.
func (m *MatchRepo) SetWinner(ctx context.Context, matchID, winnerID uuid.UUID) error {
	update := bson.M{"$set": bson.M{
		"winner": winnerID,
		"status": dmn.MatchCompleted,
	}}
	res, err := m.collection.UpdateOne(ctx, bson.M{"_id": matchID}, update)
	if err != nil {
		return errors.New("unexpected error: " + err.Error())
	}
	if res.MatchedCount == 0 {
		return ErrMatchNotFound
	}
	return nil
}
