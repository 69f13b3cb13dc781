package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var ErrConnection = errors.New("database connection failed")

type Config struct {
	URI            string
	Name           string
	ConnectTimeout time.Duration
	SocketTimeout  time.Duration
}

type dialFunc func(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)

// Manager keeps one client per process. The first Database call connects,
// later calls reuse the cached handle without checking it.
type Manager struct {
	cfg       Config
	dial      dialFunc
	onConnect func(err error)

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

func NewManager(cfg Config) *Manager {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.SocketTimeout <= 0 {
		cfg.SocketTimeout = 30 * time.Second
	}

	return &Manager{cfg: cfg, dial: connectAndPing}
}

// OnConnect registers a hook called after every establishment attempt.
func (m *Manager) OnConnect(fn func(err error)) {
	m.mu.Lock()
	m.onConnect = fn
	m.mu.Unlock()
}

func (m *Manager) Database(ctx context.Context) (*mongo.Database, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		return m.db, nil
	}

	opts := options.Client().
		ApplyURI(m.cfg.URI).
		SetConnectTimeout(m.cfg.ConnectTimeout).
		SetServerSelectionTimeout(m.cfg.ConnectTimeout).
		SetSocketTimeout(m.cfg.SocketTimeout)

	cctx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
	defer cancel()

	client, err := m.dial(cctx, opts)
	if m.onConnect != nil {
		m.onConnect(err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	m.client = client
	m.db = client.Database(m.cfg.Name)

	return m.db, nil
}

// Ping connects if needed, then checks the primary.
func (m *Manager) Ping(ctx context.Context) error {
	if _, err := m.Database(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	client := m.client
	m.mu.Unlock()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return nil
}

func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		return nil
	}

	err := m.client.Disconnect(ctx)
	m.client = nil
	m.db = nil

	return err
}

func connectAndPing(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return client, nil
}
