package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/beka-birhanu/pong-arena/api"
	api_i "github.com/beka-birhanu/pong-arena/api/i"
	"github.com/beka-birhanu/pong-arena/api/identity"
	"github.com/beka-birhanu/pong-arena/api/tournament"
	"github.com/beka-birhanu/pong-arena/config"
	"github.com/beka-birhanu/pong-arena/infrastruture/lock"
	"github.com/beka-birhanu/pong-arena/infrastruture/repo"
	"github.com/beka-birhanu/pong-arena/infrastruture/sortedstorage"
	"github.com/beka-birhanu/pong-arena/infrastruture/token"
	"github.com/beka-birhanu/pong-arena/logging"
	"github.com/beka-birhanu/pong-arena/service"
	"github.com/beka-birhanu/pong-arena/service/i"
	"github.com/beka-birhanu/pong-arena/ws"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Global variables for dependencies
var (
	mongoClient          *mongo.Client
	redisClient          *redis.Client
	userRepo             i.UserRepo
	tournamentRepo       i.TournamentRepo
	matchRepo            i.MatchRepo
	jwtTokenizer         i.Tokenizer
	authService          i.Authenticator
	sortedQueue          i.SortedQueue
	tournamentLocker     i.Locker
	bracketEngine        i.BracketEngine
	matchmaker           *service.Matchmaker
	socketServer         *ws.Server
	sessionManager       *service.GameSessionManager
	authController       api_i.Controller
	tournamentController api_i.Controller
	router               *api.Router
	appLogger            logging.Logger
)

func initMongo(ctx context.Context) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", config.Envs.DBUser, config.Envs.DBPassword, config.Envs.DBHost, config.Envs.DBPort)

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	mongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")
}

func initRedis(ctx context.Context) {
	redisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Envs.RedisHost, config.Envs.RedisPort),
		Password: config.Envs.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Redis")
}

func initRepos() {
	userRepo = repo.NewUserRepo(mongoClient, config.Envs.DBName, "users")
	tournamentRepo = repo.NewTournamentRepo(mongoClient, config.Envs.DBName, "tournaments")
	matchRepo = repo.NewMatchRepo(mongoClient, config.Envs.DBName, "matches")
	appLogger.Info("Repositories initialized")
}

func initJWTTokenizer() {
	jwtTokenizer = token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)
	appLogger.Info("JWT Tokenizer initialized")
}

func initAuthService() {
	var err error
	authService, err = service.NewAuthService(userRepo, jwtTokenizer)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating auth service: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Auth service initialized")
}

func initQueueAndLocker() {
	var err error
	sortedQueue, err = sortedstorage.NewRedisSortedQueue(redisClient)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating sorted queue: %v", err))
		os.Exit(1)
	}

	tournamentLocker, err = lock.NewRedsyncLocker(redisClient)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating tournament locker: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Queue and locker initialized")
}

func initBracketEngine() {
	bracketLogger, err := logging.New("BRACKET", config.ColorPurple, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating bracket logger: %v", err))
		os.Exit(1)
	}

	bracketEngine, err = service.NewBracket(tournamentRepo, matchRepo, tournamentLocker, bracketLogger)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating bracket engine: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Bracket engine initialized")
}

func initSocketServer() {
	socketLogger, err := logging.New("SOCKET", config.ColorCyan, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating socket logger: %v", err))
		os.Exit(1)
	}

	socketServer = ws.NewServer(jwtTokenizer, socketLogger)
	appLogger.Info("Socket server initialized")
}

func initMatchmaker() {
	matchLogger, err := logging.New("MATCH-MAKER", config.ColorMagenta, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating matchmaker logger: %v", err))
		os.Exit(1)
	}

	matchmaker, err = service.NewMatchmaker(sortedQueue, matchRepo, socketServer, matchLogger, nil)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating matchmaker: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Matchmaker initialized")
}

func initSessionManager() {
	sessionLogger, err := logging.New("SESSION-MANAGER", config.ColorBlue, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session manager logger: %v", err))
		os.Exit(1)
	}

	sessionManager, err = service.NewGameSessionManager(&service.GameSessionManagerConfig{
		Socket:     socketServer,
		Users:      userRepo,
		Matchmaker: matchmaker,
		Bracket:    bracketEngine,
		Logger:     sessionLogger,
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session manager initialized")
}

func initControllers() {
	authController = identity.NewIdentityServer(authService)

	var err error
	tournamentController, err = tournament.NewController(tournamentRepo, matchRepo, bracketEngine)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating tournament controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Controllers initialized")
}

func initRouter() {
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{authController, tournamentController},
		AuthorizationMiddleware: identity.Authoriz(jwtTokenizer),
		SocketHandler:           socketServer,
	})
	appLogger.Info("Router initialized")
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel() // Ensure the context is always canceled

	// Initialize dependencies
	appLogger, _ = logging.New("APP", config.ColorGreen, os.Stdout)

	initMongo(ctx)
	defer func() {
		_ = mongoClient.Disconnect(ctx)
	}()

	initRedis(ctx)
	defer func() {
		_ = redisClient.Close()
	}()

	initRepos()
	initJWTTokenizer()
	initAuthService()
	initQueueAndLocker()
	initBracketEngine()
	initSocketServer()
	initMatchmaker()
	initSessionManager()
	initControllers()
	initRouter()

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go matchmaker.StartSweeper(sweepCtx)

	// Run HTTP server
	if err := router.Run(); err != nil {
		appLogger.Error(fmt.Sprintf("Starting server: %v", err))
		sessionManager.StopAll()
		os.Exit(1)
	}
}
