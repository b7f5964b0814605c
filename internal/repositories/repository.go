package repositories

import "context"

// Repository aggregates every repository used by the form service
type Repository interface {
	// Form domain
	Form() FormRepository
	Submission() SubmissionRepository

	// Owner dashboard aggregates
	Dashboard() DashboardRepository

	// Autosaved editor state
	Draft() DraftRepository

	// User domain (read-only, backed by Casdoor)
	User() UserRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
