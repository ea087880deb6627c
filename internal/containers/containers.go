package containers

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Endpoint is a started container plus the host address it is reachable at.
type Endpoint struct {
	Container testcontainers.Container
	Host      string
	Port      string
}

// Addr returns host:port.
func (e *Endpoint) Addr() string {
	return fmt.Sprintf("%s:%s", e.Host, e.Port)
}

// Terminate stops and removes the container.
func (e *Endpoint) Terminate(ctx context.Context) error {
	if e == nil || e.Container == nil {
		return nil
	}
	return e.Container.Terminate(ctx)
}

// MariaDBConfig configures the database container.
type MariaDBConfig struct {
	Image        string // defaults to mariadb:11
	Database     string
	User         string
	Password     string
	RootPassword string
}

// StartMariaDB starts a MariaDB container and waits until it accepts
// connections.
func StartMariaDB(ctx context.Context, cfg MariaDBConfig) (*Endpoint, error) {
	image := cfg.Image
	if image == "" {
		image = "mariadb:11"
	}

	tcpPort, err := nat.NewPort("tcp", "3306")
	if err != nil {
		return nil, fmt.Errorf("failed to create db port: %w", err)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{string(tcpPort)},
			Env: map[string]string{
				"MARIADB_ROOT_PASSWORD": cfg.RootPassword,
				"MARIADB_DATABASE":      cfg.Database,
				"MARIADB_USER":          cfg.User,
				"MARIADB_PASSWORD":      cfg.Password,
			},
			WaitingFor: wait.ForListeningPort(tcpPort).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start mariadb: %w", err)
	}

	return endpoint(ctx, container, tcpPort)
}

// StartRedis starts a Redis container and waits until it accepts connections.
func StartRedis(ctx context.Context) (*Endpoint, error) {
	tcpPort, err := nat.NewPort("tcp", "6379")
	if err != nil {
		return nil, fmt.Errorf("failed to create redis port: %w", err)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{string(tcpPort)},
			WaitingFor:   wait.ForListeningPort(tcpPort).WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start redis: %w", err)
	}

	return endpoint(ctx, container, tcpPort)
}

func endpoint(ctx context.Context, container testcontainers.Container, port nat.Port) (*Endpoint, error) {
	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to resolve container host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to resolve mapped port: %w", err)
	}
	return &Endpoint{Container: container, Host: host, Port: mapped.Port()}, nil
}
