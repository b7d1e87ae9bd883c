//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nurox-platform/nurox/internal/admin"
	"github.com/nurox-platform/nurox/internal/api"
	"github.com/nurox-platform/nurox/internal/audit"
	"github.com/nurox-platform/nurox/internal/auth"
	"github.com/nurox-platform/nurox/internal/debate"
	"github.com/nurox-platform/nurox/internal/llm"
	"github.com/nurox-platform/nurox/internal/usage"
	"github.com/nurox-platform/nurox/internal/users"
)

const (
	adminUser = "admin"
	adminPass = "integration-admin-pass"
)

type TestEnv struct {
	Pool        *pgxpool.Pool
	RedisClient *redis.Client
	Server      *httptest.Server
	AuthSvc     *auth.Service
	UserSvc     *users.Service
	Enforcer    *usage.Enforcer
}

var testEnv *TestEnv

func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	if testEnv != nil {
		return testEnv
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "nurox_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}
	t.Cleanup(func() { pgContainer.Terminate(ctx) })

	pgHost, _ := pgContainer.Host(ctx)
	pgPort, _ := pgContainer.MappedPort(ctx, "5432")

	// Start Redis container
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting redis container: %v", err)
	}
	t.Cleanup(func() { redisContainer.Terminate(ctx) })

	redisHost, _ := redisContainer.Host(ctx)
	redisPort, _ := redisContainer.MappedPort(ctx, "6379")

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://test:test@%s:%s/nurox_test?sslmode=disable", pgHost, pgPort.Port())
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connecting to postgres: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	// Run migrations
	migrationsPath := getMigrationsPath()
	m, err := migrate.New(
		fmt.Sprintf("file://%s", migrationsPath),
		dsn,
	)
	if err != nil {
		t.Fatalf("creating migrator: %v", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("running migrations: %v", err)
	}

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port()),
	})
	t.Cleanup(func() { redisClient.Close() })

	// Fake LLM provider
	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "stub analysis"}},
			},
		})
	}))
	t.Cleanup(llmServer.Close)

	// Users
	userRepo := users.NewRepository(pool)
	userSvc := users.NewService(userRepo)

	// Auth
	jwtManager := auth.NewJWTManager("test-access-secret-32-chars-long!!", "test-refresh-secret-32-chars-long!!", 15*time.Minute, 7*24*time.Hour)
	lookup := func(ctx context.Context, userID string) (string, error) {
		id, err := uuid.Parse(userID)
		if err != nil {
			return "", err
		}
		user, err := userSvc.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		if user == nil {
			return "", auth.ErrUnknownUser
		}
		return user.Username, nil
	}
	authSvc := auth.NewService(jwtManager, auth.NewRedisRefreshStore(redisClient), lookup)
	authHandler := auth.NewHandler(authSvc, userSvc)

	// Debate pipeline on the stub provider
	enforcer := usage.NewEnforcer(usage.NewPostgresStore(pool))
	llmClient := llm.NewClient(llm.Config{
		BaseURL:     llmServer.URL,
		Model:       "llama-3.1-8b-instant",
		MaxTokens:   900,
		Temperature: 0.3,
		Timeout:     5 * time.Second,
	})
	debateRepo := debate.NewPostgresRepository(pool)
	debateSvc := debate.NewService(enforcer, debateRepo, llmClient, nil, "builder-key", "auditor-key")
	debateHandler := debate.NewHandler(debateSvc, userSvc)

	adminHandler := admin.NewHandler(userSvc, enforcer, debateRepo,
		audit.NewPostgresRepository(pool), nil)

	router := api.NewRouter(pool, redisClient, api.RouterConfig{}, api.HandlerSet{
		Register: authHandler.Register,
		Login:    authHandler.Login,
		Refresh:  authHandler.Refresh,
		Logout:   authHandler.Logout,

		Debate:  debateHandler.Debate,
		History: debateHandler.History,
		Usage:   debateHandler.Usage,

		AdminListUsers: adminHandler.ListUsers,
		AdminUpgrade:   adminHandler.Upgrade,
		AdminDisable:   adminHandler.Disable,
		AdminStats:     adminHandler.Stats,
		AdminAudit:     adminHandler.Audit,

		AuthMiddleware:  auth.Middleware(authSvc),
		AdminMiddleware: admin.Middleware(adminUser, adminPass),
	})

	server := httptest.NewServer(router)
	t.Cleanup(func() { server.Close() })

	testEnv = &TestEnv{
		Pool:        pool,
		RedisClient: redisClient,
		Server:      server,
		AuthSvc:     authSvc,
		UserSvc:     userSvc,
		Enforcer:    enforcer,
	}

	return testEnv
}

func getMigrationsPath() string {
	// Try relative paths from test directory
	paths := []string{
		"../../migrations",
		"../../../migrations",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	log.Fatal("migrations directory not found")
	return ""
}

// Helper functions

func RegisterUser(t *testing.T, env *TestEnv, username, email, password string) map[string]any {
	t.Helper()
	body := map[string]string{"username": username, "email": email, "password": password}
	resp := DoRequest(t, env, "POST", "/api/v1/auth/register", body, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register failed: status %d", resp.StatusCode)
	}
	return ParseResponse(t, resp)
}

func LoginUser(t *testing.T, env *TestEnv, username, password string) string {
	t.Helper()
	body := map[string]string{"username": username, "password": password}
	resp := DoRequest(t, env, "POST", "/api/v1/auth/login", body, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: status %d", resp.StatusCode)
	}
	result := ParseResponse(t, resp)
	data := result["data"].(map[string]any)
	return data["access_token"].(string)
}

func DoRequest(t *testing.T, env *TestEnv, method, path string, body any, token string) *http.Response {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, env.Server.URL+path, bodyReader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("doing request: %v", err)
	}
	return resp
}

func DoAdminRequest(t *testing.T, env *TestEnv, method, path string, body any) *http.Response {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, env.Server.URL+path, bodyReader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(adminUser, adminPass)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("doing request: %v", err)
	}
	return resp
}

func ParseResponse(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	return result
}
