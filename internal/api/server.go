package api

import (
	"context"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/songcontest/songcontest-api/docs"
	v1 "github.com/songcontest/songcontest-api/internal/api/handler/v1"
	"github.com/songcontest/songcontest-api/internal/api/middleware"
	"github.com/songcontest/songcontest-api/internal/config"
	"github.com/songcontest/songcontest-api/internal/repository"
	"github.com/songcontest/songcontest-api/internal/repository/dao"
	"github.com/songcontest/songcontest-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	// Editions drives phase transitions for both the handlers and the
	// sweeper, so phase events reach Events from either path.
	Editions *service.EditionService
	Events   *v1.EventsHandler

	repos repositories
}

type repositories struct {
	contests    *repository.ContestRepository
	editions    *repository.EditionRepository
	submissions *repository.SubmissionRepository
	ballots     *repository.BallotRepository
	profiles    *repository.ProfileRepository
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
		repos:  initRepositories(db, conf.Postgres),
	}

	s.MountMiddlewares()

	s.Events = s.initEventsHandler()
	s.Editions = service.NewEditionService(
		s.repos.contests, s.repos.editions, s.repos.submissions, s.repos.ballots,
		s.Events, conf.Batch.Concurrency,
	)

	s.MountHandlers(
		v1.NewProfileHandler(service.NewProfileService(s.repos.profiles)),
		s.initContestHandler(),
		v1.NewEditionHandler(s.Editions),
		s.initSubmissionHandler(),
		s.initBallotHandler(),
		s.initResultsHandler(),
		s.Events,
	)

	return s
}

func initRepositories(db *gorm.DB, conf *config.PostgresConfig) repositories {
	return repositories{
		contests:    repository.NewContestRepository(dao.NewContestDAO(db, conf.CallTimeout)),
		editions:    repository.NewEditionRepository(dao.NewEditionDAO(db, conf.CallTimeout)),
		submissions: repository.NewSubmissionRepository(dao.NewSubmissionDAO(db, conf.CallTimeout)),
		ballots:     repository.NewBallotRepository(dao.NewBallotDAO(db, conf.CallTimeout)),
		profiles:    repository.NewProfileRepository(dao.NewProfileDAO(db, conf.CallTimeout)),
	}
}

// initEventsHandler gives the hub its own read-only edition service for the
// subscription access check.
func (s *Server) initEventsHandler() *v1.EventsHandler {
	reader := service.NewEditionService(
		s.repos.contests, s.repos.editions, s.repos.submissions, s.repos.ballots,
		nil, s.Config.Batch.Concurrency,
	)
	return v1.NewEventsHandler(reader, s.Config.API.AllowedCORSDomains)
}

func (s *Server) initContestHandler() *v1.ContestHandler {
	svc := service.NewContestService(s.repos.contests, s.repos.editions)
	return v1.NewContestHandler(svc)
}

func (s *Server) initSubmissionHandler() *v1.SubmissionHandler {
	svc := service.NewSubmissionService(s.repos.contests, s.repos.editions, s.repos.submissions)
	return v1.NewSubmissionHandler(svc)
}

func (s *Server) initBallotHandler() *v1.BallotHandler {
	svc := service.NewBallotService(s.repos.contests, s.repos.editions, s.repos.submissions, s.repos.ballots)
	return v1.NewBallotHandler(svc)
}

func (s *Server) initResultsHandler() *v1.ResultsHandler {
	svc := service.NewResultsService(s.repos.contests, s.repos.editions, s.repos.submissions, s.repos.ballots)
	return v1.NewResultsHandler(svc)
}

// RunEvents serves the phase event hub until ctx is done.
func (s *Server) RunEvents(ctx context.Context) {
	s.Events.Run(ctx)
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	profileHandler *v1.ProfileHandler,
	contestHandler *v1.ContestHandler,
	editionHandler *v1.EditionHandler,
	submissionHandler *v1.SubmissionHandler,
	ballotHandler *v1.BallotHandler,
	resultsHandler *v1.ResultsHandler,
	eventsHandler *v1.EventsHandler,
) {
	const basePath = "/api/v1"

	auth := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)

	guests := s.Router.Group(basePath, auth.OptionalJWT())
	{
		guests.POST("/editions/:editionID/televotes", ballotHandler.HandleSubmitTelevote)
	}

	profiles := s.Router.Group(basePath, auth.VerifyJWT())
	{
		profiles.POST("/profiles/confirm", profileHandler.HandleConfirmProfile)
		profiles.GET("/profiles/me", profileHandler.HandleGetMyProfile)
		profiles.PUT("/profiles/me", profileHandler.HandleRenameMyProfile)
	}

	contests := s.Router.Group(basePath, auth.VerifyJWT())
	{
		contests.POST("/contests", contestHandler.HandleCreateContest)
		contests.GET("/contests", contestHandler.HandleGetMyContests)
		contests.GET("/contests/:contestID", contestHandler.HandleGetContest)
		contests.PUT("/contests/:contestID", contestHandler.HandleUpdateContest)
		contests.DELETE("/contests/:contestID", contestHandler.HandleDeleteContest)
		contests.POST("/contests/:contestID/join", contestHandler.HandleJoinContest)
		contests.POST("/contests/:contestID/leave", contestHandler.HandleLeaveContest)
		contests.GET("/contests/:contestID/leaderboard", resultsHandler.HandleGetLeaderboard)
		contests.POST("/contests/:contestID/editions", editionHandler.HandleCreateEdition)
		contests.GET("/contests/:contestID/editions", editionHandler.HandleGetEditions)
	}

	editions := s.Router.Group(basePath, auth.VerifyJWT())
	{
		editions.GET("/editions/:editionID", editionHandler.HandleGetEdition)
		editions.PUT("/editions/:editionID", editionHandler.HandleUpdateEdition)
		editions.POST("/editions/:editionID/open-submissions", editionHandler.HandleOpenSubmissions)
		editions.POST("/editions/:editionID/close-submissions", editionHandler.HandleCloseSubmissions)
		editions.POST("/editions/:editionID/close-voting", editionHandler.HandleCloseVoting)
		editions.POST("/editions/:editionID/finalize", editionHandler.HandleFinalizeEdition)
		editions.POST("/editions/:editionID/reveal", editionHandler.HandleRevealResults)
		editions.PUT("/editions/:editionID/playlist", editionHandler.HandleSetPlaylist)
		editions.GET("/editions/:editionID/results", resultsHandler.HandleGetEditionResults)
		editions.GET("/editions/:editionID/events", eventsHandler.HandleEditionEvents)

		editions.POST("/editions/:editionID/submissions", submissionHandler.HandleCreateSubmission)
		editions.GET("/editions/:editionID/submissions", submissionHandler.HandleGetSubmissions)
		editions.POST("/submissions/:submissionID/reject", submissionHandler.HandleRejectSubmission)

		editions.PUT("/editions/:editionID/ranking/draft", ballotHandler.HandleSaveDraft)
		editions.GET("/editions/:editionID/ranking/draft", ballotHandler.HandleGetDraft)
		editions.POST("/editions/:editionID/ranking", ballotHandler.HandleSubmitRanking)
		editions.GET("/editions/:editionID/ranking", ballotHandler.HandleGetRanking)
		editions.POST("/editions/:editionID/votes", ballotHandler.HandleSubmitVotes)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Song Contest API"
	docs.SwaggerInfo.Description = "Contests, editions, ranked ballots and results."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
