package filterql

import (
	"gorm.io/gorm"

	"github.com/nlstn/go-filterql/internal/relational"
)

// SQLRenderer renders relational filters as SQL text for one dialect
// without a database connection.
type SQLRenderer = relational.Renderer

// NewSQLRenderer creates a SQLRenderer for a GORM dialector, e.g.
// sqlite.Open("file::memory:").
func NewSQLRenderer(dialector gorm.Dialector) (*SQLRenderer, error) {
	return relational.NewRenderer(dialector)
}

// NewPostgresRenderer creates a SQLRenderer for PostgreSQL.
func NewPostgresRenderer() (*SQLRenderer, error) {
	return relational.NewPostgresRenderer()
}
