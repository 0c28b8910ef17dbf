package parser

import (
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/beesaferoot/boardinghouse/migration"
)

type ModelParser struct {
	db     *gorm.DB
	models map[string]interface{}
}

func NewModelParser(db *gorm.DB) (*ModelParser, error) {
	if err := migration.ValidateRegistry(); err != nil {
		return nil, err
	}

	p := &ModelParser{
		db:     db,
		models: migration.GlobalModelRegistry.GetModels(),
	}

	if len(p.models) == 0 {
		return nil, fmt.Errorf("no models found in registry")
	}

	return p, nil
}

func (p *ModelParser) Parse() (map[string]*schema.Schema, error) {
	schemas := make(map[string]*schema.Schema)

	for name, model := range p.models {
		stmt := &gorm.Statement{DB: p.db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model %s with GORM: %w. Check for unsupported field types or incorrect struct tags", name, err)
		}
		if stmt.Schema == nil {
			return nil, fmt.Errorf("GORM failed to produce a schema for model %s", name)
		}
		schemas[name] = stmt.Schema
	}
	return schemas, nil
}

// Drift lists every table or column the models declare that the database lacks.
func (p *ModelParser) Drift() ([]string, error) {
	schemas, err := p.Parse()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	var problems []string
	migrator := p.db.Migrator()
	for _, name := range names {
		s := schemas[name]
		if !migrator.HasTable(s.Table) {
			problems = append(problems, fmt.Sprintf("%s: table %s is missing", name, s.Table))
			continue
		}
		for _, field := range s.Fields {
			if field.DBName == "" {
				continue
			}
			if !migrator.HasColumn(s.Table, field.DBName) {
				problems = append(problems, fmt.Sprintf("%s: column %s.%s is missing", name, s.Table, field.DBName))
			}
		}
	}
	return problems, nil
}
