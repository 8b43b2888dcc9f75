package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/qkart/backend/api"
	"github.com/qkart/backend/config"
	"github.com/qkart/backend/core/token"
	"github.com/qkart/backend/core/user"
	"github.com/qkart/backend/database"
	"github.com/qkart/backend/rate"
	"github.com/qkart/backend/validate"
	"github.com/sirupsen/logrus"
)

const (
	testSecret   = "integration-test-secret"
	testPassword = "hunter2hunter2"
)

var dbHost string

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Printf("skipping integration tests, docker unavailable: %v", err)
		return 0
	}

	resource, err := pool.Run("postgres", "15-alpine", []string{
		"POSTGRES_USER=postgres",
		"POSTGRES_PASSWORD=postgres",
		"POSTGRES_DB=postgres",
	})
	if err != nil {
		log.Printf("could not start postgres container: %v", err)
		return 1
	}
	defer func() {
		if err := pool.Purge(resource); err != nil {
			log.Printf("could not purge postgres container: %v", err)
		}
	}()

	dbHost = "localhost:" + resource.GetPort("5432/tcp")

	if err := pool.Retry(func() error {
		db, err := database.Open(config.DB{
			User: "postgres", Password: "postgres", Host: dbHost, Name: "postgres", DisableTLS: true,
		})
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Ping()
	}); err != nil {
		log.Printf("postgres never became reachable: %v", err)
		return 1
	}

	return m.Run()
}

type TestEnv struct {
	DB     *sqlx.DB
	Server *httptest.Server
	URL    string
	JWT    config.JWT
	Cart   config.Cart
}

// NewTestEnv creates a dedicated database named after the calling test and
// serves the full API over it, so tests cannot see each other's state.
func NewTestEnv(t *testing.T, name string) (*TestEnv, error) {
	t.Helper()

	admin, err := database.Open(config.DB{
		User: "postgres", Password: "postgres", Host: dbHost, Name: "postgres", DisableTLS: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening admin connection: %w", err)
	}
	defer admin.Close()

	if _, err := admin.Exec("CREATE DATABASE " + name); err != nil {
		return nil, fmt.Errorf("creating database %s: %w", name, err)
	}

	db, err := database.Open(config.DB{
		User: "postgres", Password: "postgres", Host: dbHost, Name: name, DisableTLS: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening test connection: %w", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrating test database: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := TestEnv{
		DB:   db,
		JWT:  config.JWT{Secret: testSecret, AccessExpirationMinutes: 30},
		Cart: config.Cart{
			DefaultPaymentOption: "PAYMENT_OPTION_DEFAULT",
			DefaultAddress:       "ADDRESS_NOT_SET",
			DefaultWalletMoney:   500,
		},
	}

	mux := api.APIMux(api.APIConfig{
		Log:          logger,
		DB:           db,
		JWT:          env.JWT,
		Cart:         env.Cart,
		LoginLimiter: rate.NewLimiter(100, 100, 100),
	})

	env.Server = httptest.NewServer(mux)
	t.Cleanup(env.Server.Close)
	env.URL = env.Server.URL

	return &env, nil
}

type authResponse struct {
	User   user.User        `json:"user"`
	Tokens token.AuthTokens `json:"tokens"`
}

// do runs a JSON request and decodes the response into out when non-nil,
// returning the status code and the raw body.
func (e *TestEnv) do(t *testing.T, method, path, bearer string, body any, out any) (int, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	r, err := http.NewRequest(method, e.URL+path, rd)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		r.Header.Set("Authorization", "Bearer "+bearer)
	}

	w, err := e.Server.Client().Do(r)
	if err != nil {
		t.Fatalf("doing request: %v", err)
	}
	defer w.Body.Close()

	raw, err := io.ReadAll(w.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("unmarshaling response %s: %v", raw, err)
		}
	}

	return w.StatusCode, raw
}

func errorMessage(t *testing.T, raw []byte) string {
	t.Helper()

	var er struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &er); err != nil {
		t.Fatalf("unmarshaling error response %s: %v", raw, err)
	}
	return er.Error
}

// registerOK creates a user through the API and hands back its identity and
// access token.
func (e *TestEnv) registerOK(t *testing.T, email string) authResponse {
	t.Helper()

	body := map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": testPassword,
	}

	var ar authResponse
	status, raw := e.do(t, http.MethodPost, "/v1/auth/register", "", body, &ar)
	if status != http.StatusCreated {
		t.Fatalf("registering %s: status %d, body %s", email, status, raw)
	}

	return ar
}

// createProduct seeds a catalog entry directly, since the catalog has no
// write API.
func (e *TestEnv) createProduct(t *testing.T, name string, cost int) string {
	t.Helper()

	id := validate.GenerateID()
	const q = `INSERT INTO products (product_id, name, category, cost, rating, image) VALUES ($1, $2, 'Test', $3, 5, '')`
	if _, err := e.DB.Exec(q, id, name, cost); err != nil {
		t.Fatalf("inserting product: %v", err)
	}

	return id
}

func (e *TestEnv) setWallet(t *testing.T, email string, amount int) {
	t.Helper()

	if _, err := e.DB.Exec(`UPDATE users SET wallet_money = $2 WHERE email = $1`, email, amount); err != nil {
		t.Fatalf("setting wallet: %v", err)
	}
}

func (e *TestEnv) setAddress(t *testing.T, ar authResponse, address string) {
	t.Helper()

	body := map[string]string{"address": address}
	status, raw := e.do(t, http.MethodPut, "/v1/users/"+ar.User.ID, ar.Tokens.Access.Token, body, nil)
	if status != http.StatusOK {
		t.Fatalf("setting address: status %d, body %s", status, raw)
	}
}

func expiredToken(t *testing.T, userID string) string {
	t.Helper()

	tkn, err := token.Generate(userID, time.Now().Add(-time.Minute).Unix(), token.Access, testSecret)
	if err != nil {
		t.Fatalf("generating expired token: %v", err)
	}
	return tkn
}
