package tournament

import (
	"errors"
	"net/http"

	"github.com/beka-birhanu/pong-arena/api/identity"
	dmn "github.com/beka-birhanu/pong-arena/domain"
	"github.com/beka-birhanu/pong-arena/service"
	"github.com/beka-birhanu/pong-arena/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Controller manages tournament lifecycle operations.
type Controller struct {
	tournaments i.TournamentRepo
	matches     i.MatchRepo
	bracket     i.BracketEngine
}

// NewController initializes a tournament Controller.
func NewController(tournaments i.TournamentRepo, matches i.MatchRepo, bracket i.BracketEngine) (*Controller, error) {
	return &Controller{
		tournaments: tournaments,
		matches:     matches,
		bracket:     bracket,
	}, nil
}

// RegisterPublic registers public routes.
func (c *Controller) RegisterPublic(route *gin.RouterGroup) {}

// RegisterProtected registers protected routes.
func (c *Controller) RegisterProtected(route *gin.RouterGroup) {
	tournaments := route.Group("/tournaments")
	{
		tournaments.POST("/", c.create)
		tournaments.POST("/:ID/join", c.join)
		tournaments.POST("/:ID/start", c.start)
		tournaments.GET("/:ID", c.bracketView)
	}
}

// create handles tournament creation. The creator joins the roster
// immediately.
func (c *Controller) create(ctx *gin.Context) {
	var request CreateRequest
	if err := ctx.ShouldBind(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	callerID, err := identity.CurrentUserID(ctx)
	if err != nil {
		ctx.Status(http.StatusUnauthorized)
		return
	}

	tournament := &dmn.Tournament{
		ID:           uuid.New(),
		Name:         request.Name,
		CreatorID:    callerID,
		Status:       dmn.TournamentPending,
		Participants: []uuid.UUID{callerID},
	}
	if err := c.tournaments.Create(ctx, tournament); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while creating tournament"})
		return
	}

	ctx.JSON(http.StatusCreated, newTournamentResponse(tournament))
}

// join adds the caller to a pending tournament's roster.
func (c *Controller) join(ctx *gin.Context) {
	tournamentID, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "id not found"})
		return
	}

	callerID, err := identity.CurrentUserID(ctx)
	if err != nil {
		ctx.Status(http.StatusUnauthorized)
		return
	}

	if err := c.tournaments.AddParticipant(ctx, tournamentID, callerID); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// start moves a pending tournament in progress, generating round one.
func (c *Controller) start(ctx *gin.Context) {
	tournamentID, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "id not found"})
		return
	}

	callerID, err := identity.CurrentUserID(ctx)
	if err != nil {
		ctx.Status(http.StatusUnauthorized)
		return
	}

	if err := c.bracket.Start(ctx, tournamentID, callerID); err != nil {
		switch {
		case errors.Is(err, service.ErrTournamentNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotCreator):
			ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrTournamentNotPending),
			errors.Is(err, service.ErrNotEnoughParticipants):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while starting tournament"})
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

// bracketView returns a tournament together with all its matches.
func (c *Controller) bracketView(ctx *gin.Context) {
	tournamentID, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "id not found"})
		return
	}

	tournament, err := c.tournaments.ByID(ctx, tournamentID)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "tournament not found"})
		return
	}

	matches, err := c.matches.ByTournament(ctx, tournamentID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while loading bracket"})
		return
	}

	response := BracketResponse{
		Tournament: newTournamentResponse(tournament),
		Matches:    make([]MatchResponse, 0, len(matches)),
	}
	for _, m := range matches {
		response.Matches = append(response.Matches, newMatchResponse(m))
	}
	ctx.JSON(http.StatusOK, response)
}
