// Package backend provides the Code Crafts API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/auth: Magic-link authentication and JWT sessions
// - internal/analytics: Dashboard scope resolution, aggregate stats, post insights
// - internal/views: View ingestion and stored analytics snapshots
// - internal/storage: File storage (S3) operations
// - internal/database: Database connection and migrations
// - internal/email: Email service integration (SES)
// - internal/cache: Redis client and HyperLogLog counters
// - internal/middleware: HTTP middleware (rate limiting, etc.)
// - internal/seed: Development database seeding

// See the individual package documentation for detailed API reference.
package backend
