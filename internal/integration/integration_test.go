package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap/zaptest"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/infra/postgres"
	infraredis "quiz-engine/internal/infra/redis"
	pgmigrations "quiz-engine/internal/infra/postgres/migrations"
)

func TestQuizEngineEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	runMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool)
	seedBank(t, ctx, store)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	logger := zaptest.NewLogger(t)
	service := app.NewQuizService(store, app.Options{
		AnswerKeys:       infraredis.NewAnswerKeyCache(redisClient, store, 5*time.Minute),
		LeaderboardCache: infraredis.NewLeaderboardCache(redisClient, time.Minute, logger),
		Rand:             rand.New(rand.NewSource(9)),
		Logger:           logger,
	})

	session, err := service.StartSession(ctx, "t1", domain.SessionOptions{
		QuestionCount: domain.QuestionCount{All: true},
		ExtraTopicIDs: []string{"t2"},
	})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if session.QuestionCount != 4 || session.TopicName != "Arithmetic, Geometry" || session.NotesURL != "" {
		t.Fatalf("unexpected session %+v", session)
	}

	submission := domain.Submission{TopicID: "t1", TimeSpent: 200}
	correct := 0
	for _, q := range session.Questions {
		selected := "b"
		if correct < 3 {
			selected = "a"
			correct++
		}
		submission.Answers = append(submission.Answers, domain.SubmittedAnswer{QuestionID: q.ID, SelectedOptionID: selected})
	}

	result, unlocked, err := service.SubmitAttempt(ctx, "u1", submission)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 2.75 || result.Percentage != 68.75 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(unlocked) != 1 || unlocked[0].Type != app.AchievementFirstQuiz {
		t.Fatalf("expected first quiz, got %+v", unlocked)
	}
	if created, err := store.UpsertAchievement(ctx, unlocked[0]); err != nil || created {
		t.Fatalf("achievement must already exist, created=%v err=%v", created, err)
	}

	if _, _, err := service.SubmitAttempt(ctx, "u2", domain.Submission{
		TopicID: "t1",
		Answers: []domain.SubmittedAnswer{{QuestionID: "q1", SelectedOptionID: "a"}},
	}); err != nil {
		t.Fatalf("submit u2: %v", err)
	}

	board, err := service.Leaderboard(ctx, domain.WindowWeekly, "Math")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 2 || board[0].UserID != "u1" || board[0].DisplayName != "Asha" || board[1].DisplayName != app.AnonymousName {
		t.Fatalf("unexpected leaderboard %+v", board)
	}
	if n, err := redisClient.Exists(ctx, "quiz:leaderboard:weekly:Math").Result(); err != nil || n != 1 {
		t.Fatalf("expected cached leaderboard, n=%d err=%v", n, err)
	}

	empty, err := service.Leaderboard(ctx, domain.WindowAllTime, "History")
	if err != nil || len(empty) != 0 {
		t.Fatalf("unknown subject must give an empty board, got %+v err=%v", empty, err)
	}

	quiz, err := service.ImportQuiz(ctx, []byte(`{"id": "bilingual-1", "title": "Shapes / आकार", "questions": [{"question": "Sides of a square?", "options": ["4", "3"], "correctAnswer": 0}]}`))
	if err != nil {
		t.Fatalf("import quiz: %v", err)
	}
	loaded, err := service.GetQuiz(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loaded.Title.HI != "आकार" || len(loaded.Questions) != 1 || !loaded.IsMultilingual {
		t.Fatalf("unexpected stored quiz %+v", loaded)
	}
	if _, err := service.GetQuiz(ctx, "nope"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func runMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

// seedBank creates subject Math with topics t1 (q1-q2) and t2 (q3-q4); "a" is always correct.
func seedBank(t *testing.T, ctx context.Context, store *postgres.Store) {
	t.Helper()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	must(store.SaveSubject(ctx, domain.Subject{ID: "s1", Name: "Math"}))
	must(store.SaveTopic(ctx, domain.Topic{ID: "t1", Name: "Arithmetic", SubjectID: "s1", NotesURL: "notes/arith.pdf"}))
	must(store.SaveTopic(ctx, domain.Topic{ID: "t2", Name: "Geometry", SubjectID: "s1"}))
	must(store.SaveUser(ctx, "u1", domain.UserDisplay{Name: "Asha", Email: "asha@example.com"}))
	for i := 1; i <= 4; i++ {
		topicID := "t1"
		if i > 2 {
			topicID = "t2"
		}
		must(store.SaveQuestion(ctx, domain.Question{
			ID:      fmt.Sprintf("q%d", i),
			TopicID: topicID,
			Text:    fmt.Sprintf("Question %d", i),
			Options: []domain.Option{
				{ID: "a", Text: "right"},
				{ID: "b", Text: "wrong"},
			},
			CorrectOptionID: "a",
		}))
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
