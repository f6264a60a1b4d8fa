package repo

import (
	"context"
	"errors"

	dmn "github.com/beka-birhanu/pong-arena/domain"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Tournament repository errors.
var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentStarted  = errors.New("tournament is no longer pending")
)

// TournamentRepo handles the persistence of tournaments and rosters.
type TournamentRepo struct {
	collection *mongo.Collection
}

// NewTournamentRepo creates a new TournamentRepo on the given collection.
func NewTournamentRepo(client *mongo.Client, dbName, collectionName string) *TournamentRepo {
	return &TournamentRepo{
		collection: client.Database(dbName).Collection(collectionName),
	}
}

// Create inserts a new tournament.
func (t *TournamentRepo) Create(ctx context.Context, tournament *dmn.Tournament) error {
	if _, err := t.collection.InsertOne(ctx, tournament); err != nil {
		return errors.New("unexpected error: " + err.Error())
	}
	return nil
}

// ByID retrieves a tournament by its ID.
func (t *TournamentRepo) ByID(ctx context.Context, id uuid.UUID) (*dmn.Tournament, error) {
	var tournament dmn.Tournament
	if err := t.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tournament); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTournamentNotFound
		}
		return nil, errors.New("unexpected error: " + err.Error())
	}
	return &tournament, nil
}

// AddParticipant adds a player to a pending tournament's roster. Adding the
// same player twice is a no-op. Returns ErrTournamentStarted if the
// tournament exists but is no longer pending.
func (t *TournamentRepo) AddParticipant(ctx context.Context, tournamentID, playerID uuid.UUID) error {
	filter := bson.M{"_id": tournamentID, "status": dmn.TournamentPending}
	update := bson.M{"$addToSet": bson.M{"participants": playerID}}

	res, err := t.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return errors.New("unexpected error: " + err.Error())
	}
	if res.MatchedCount == 0 {
		if _, err := t.ByID(ctx, tournamentID); err != nil {
			return err
		}
		return ErrTournamentStarted
	}
	return nil
}

// SetStatus updates a tournament's lifecycle status.
func (t *TournamentRepo) SetStatus(ctx context.Context, id uuid.UUID, status dmn.TournamentStatus) error {
	res, err := t.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return errors.New("unexpected error: " + err.Error())
	}
	if res.MatchedCount == 0 {
		return ErrTournamentNotFound
	}
	return nil
}
