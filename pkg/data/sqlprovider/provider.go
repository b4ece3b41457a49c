// Package sqlprovider implements data.Provider on top of database/sql. It
// targets a single table and supports the sqlite (modernc.org/sqlite) and
// mysql (github.com/go-sql-driver/mysql) drivers.
package sqlprovider

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/goliatone/go-dcgeneral/pkg/data"
	"github.com/goliatone/go-dcgeneral/pkg/data/idgen"
	"github.com/goliatone/go-dcgeneral/pkg/model"
)

// Dialect selects identifier quoting.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Option configures a Provider.
type Option func(*Provider)

// WithIDColumn overrides the primary key column (default "id").
func WithIDColumn(column string) Option {
	return func(p *Provider) {
		if strings.TrimSpace(column) != "" {
			p.idColumn = strings.TrimSpace(column)
		}
	}
}

// WithIDGenerator assigns ids on insert. Without one the database assigns
// them (auto increment).
func WithIDGenerator(gen idgen.Generator) Option {
	return func(p *Provider) {
		p.ids = gen
	}
}

// WithDialect overrides the dialect inferred by New.
func WithDialect(d Dialect) Option {
	return func(p *Provider) {
		p.dialect = d
	}
}

// WithName overrides the provider name (defaults to the table name).
func WithName(name string) Option {
	return func(p *Provider) {
		if strings.TrimSpace(name) != "" {
			p.name = strings.TrimSpace(name)
		}
	}
}

// Provider reads and writes one table.
type Provider struct {
	db       *sql.DB
	name     string
	table    string
	idColumn string
	dialect  Dialect
	ids      idgen.Generator
}

var _ data.Provider = (*Provider)(nil)

// New constructs a provider for table.
func New(db *sql.DB, table string, options ...Option) (*Provider, error) {
	if db == nil {
		return nil, errors.New("sqlprovider: db is required")
	}
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("sqlprovider: invalid table name %q", table)
	}
	p := &Provider{
		db:       db,
		name:     table,
		table:    table,
		idColumn: "id",
		dialect:  DialectSQLite,
		ids:      idgen.AutoIncrement{},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	if !identifierPattern.MatchString(p.idColumn) {
		return nil, fmt.Errorf("sqlprovider: invalid id column %q", p.idColumn)
	}
	return p, nil
}

// Open opens a database for one of the supported drivers.
func Open(driver, dsn string) (*sql.DB, error) {
	switch Dialect(driver) {
	case DialectSQLite, DialectMySQL:
	default:
		return nil, fmt.Errorf("sqlprovider: unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlprovider: open %s: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlprovider: connect %s: %w", driver, err)
	}
	return db, nil
}

// Migrate executes schema statements in order.
func Migrate(ctx context.Context, db *sql.DB, statements ...string) error {
	for i, stmt := range statements {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlprovider: migration %d: %w", i, err)
		}
	}
	return nil
}

// Name implements data.Provider.
func (p *Provider) Name() string {
	return p.name
}

// EmptyConfig implements data.Provider.
func (p *Provider) EmptyConfig() data.Config {
	return data.Config{}
}

// EmptyModel implements data.Provider.
func (p *Provider) EmptyModel() *model.Model {
	return model.New(p.name)
}

// Fetch implements data.Provider.
func (p *Provider) Fetch(ctx context.Context, cfg data.Config) (*model.Model, error) {
	cfg.Start, cfg.Amount = 0, 1
	collection, err := p.FetchAll(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if collection.Len() == 0 {
		return nil, nil
	}
	return collection.Get(0), nil
}

// FetchAll implements data.Provider.
func (p *Provider) FetchAll(ctx context.Context, cfg data.Config) (*model.Collection, error) {
	query, args, err := p.selectQuery(cfg, false)
	if err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlprovider: query %s: %w", p.table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlprovider: columns %s: %w", p.table, err)
	}

	out := model.NewCollection()
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("sqlprovider: scan %s: %w", p.table, err)
		}

		m := model.New(p.name)
		for i, column := range columns {
			value := normalizeValue(values[i])
			if column == p.idColumn {
				m.SetID(data.ToString(value))
				continue
			}
			m.SetProperty(column, value)
		}
		out.Add(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlprovider: iterate %s: %w", p.table, err)
	}
	return out, nil
}

// Count implements data.Provider.
func (p *Provider) Count(ctx context.Context, cfg data.Config) (int, error) {
	query, args, err := p.selectQuery(cfg, true)
	if err != nil {
		return 0, err
	}
	var count int
	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("sqlprovider: count %s: %w", p.table, err)
	}
	return count, nil
}

// Save implements data.Provider.
func (p *Provider) Save(ctx context.Context, m *model.Model) error {
	if m == nil {
		return errors.New("sqlprovider: cannot save nil model")
	}
	props := m.Properties()
	delete(props, p.idColumn)

	columns := make([]string, 0, len(props))
	for column := range props {
		if !identifierPattern.MatchString(column) {
			return fmt.Errorf("sqlprovider: invalid column %q", column)
		}
		columns = append(columns, column)
	}
	sort.Strings(columns)

	if m.ID() != "" {
		exists, err := p.exists(ctx, m.ID())
		if err != nil {
			return err
		}
		if exists {
			return p.update(ctx, m.ID(), columns, props)
		}
		return p.insert(ctx, m, m.ID(), columns, props)
	}

	id, err := p.ids.Generate(ctx)
	if err != nil {
		return fmt.Errorf("sqlprovider: generate id: %w", err)
	}
	return p.insert(ctx, m, id, columns, props)
}

// Delete implements data.Provider.
func (p *Provider) Delete(ctx context.Context, m *model.Model) error {
	if m == nil || m.ID() == "" {
		return errors.New("sqlprovider: cannot delete model without id")
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", p.quote(p.table), p.quote(p.idColumn))
	if _, err := p.db.ExecContext(ctx, query, m.ID()); err != nil {
		return fmt.Errorf("sqlprovider: delete from %s: %w", p.table, err)
	}
	return nil
}

func (p *Provider) exists(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", p.quote(p.table), p.quote(p.idColumn))
	var count int
	if err := p.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return false, fmt.Errorf("sqlprovider: lookup %s: %w", p.table, err)
	}
	return count > 0, nil
}

func (p *Provider) insert(ctx context.Context, m *model.Model, id string, columns []string, props map[string]any) error {
	names := make([]string, 0, len(columns)+1)
	args := make([]any, 0, len(columns)+1)
	if id != "" {
		names = append(names, p.quote(p.idColumn))
		args = append(args, id)
	}
	for _, column := range columns {
		names = append(names, p.quote(column))
		args = append(args, props[column])
	}

	var query string
	if len(names) == 0 {
		query = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", p.quote(p.table))
		if p.dialect == DialectMySQL {
			query = fmt.Sprintf("INSERT INTO %s () VALUES ()", p.quote(p.table))
		}
	} else {
		query = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			p.quote(p.table), strings.Join(names, ", "), placeholders(len(names)))
	}

	result, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlprovider: insert into %s: %w", p.table, err)
	}
	if id == "" {
		lastID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("sqlprovider: last insert id: %w", err)
		}
		id = strconv.FormatInt(lastID, 10)
	}
	m.SetID(id)
	return nil
}

func (p *Provider) update(ctx context.Context, id string, columns []string, props map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	sets := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns)+1)
	for _, column := range columns {
		sets = append(sets, p.quote(column)+" = ?")
		args = append(args, props[column])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		p.quote(p.table), strings.Join(sets, ", "), p.quote(p.idColumn))
	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlprovider: update %s: %w", p.table, err)
	}
	return nil
}

func (p *Provider) selectQuery(cfg data.Config, count bool) (string, []any, error) {
	var b strings.Builder
	var args []any

	if count {
		b.WriteString("SELECT COUNT(*) FROM ")
	} else {
		fields := "*"
		if len(cfg.Fields) > 0 {
			quoted := []string{p.quote(p.idColumn)}
			for _, field := range cfg.Fields {
				if field == p.idColumn {
					continue
				}
				if !identifierPattern.MatchString(field) {
					return "", nil, fmt.Errorf("sqlprovider: invalid field %q", field)
				}
				quoted = append(quoted, p.quote(field))
			}
			fields = strings.Join(quoted, ", ")
		}
		b.WriteString("SELECT " + fields + " FROM ")
	}
	b.WriteString(p.quote(p.table))

	filters := append([]data.Filter(nil), cfg.Filter...)
	if cfg.ID != "" {
		filters = append(filters, data.Equal(p.idColumn, cfg.ID))
	}
	if len(filters) > 0 {
		where, whereArgs, err := p.whereClause(data.And(filters...))
		if err != nil {
			return "", nil, err
		}
		b.WriteString(" WHERE " + where)
		args = append(args, whereArgs...)
	}

	if count {
		return b.String(), args, nil
	}

	if len(cfg.Sorting) > 0 {
		orders := make([]string, 0, len(cfg.Sorting))
		for _, field := range cfg.Sorting {
			field = field.Normalize()
			column := p.column(field.Property)
			if !identifierPattern.MatchString(column) {
				return "", nil, fmt.Errorf("sqlprovider: invalid sort field %q", field.Property)
			}
			orders = append(orders, p.quote(column)+" "+string(field.Direction))
		}
		b.WriteString(" ORDER BY " + strings.Join(orders, ", "))
	}

	if cfg.Amount > 0 {
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, cfg.Amount, cfg.Start)
	} else if cfg.Start > 0 {
		b.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, int64(1<<62), cfg.Start)
	}

	return b.String(), args, nil
}

func (p *Provider) whereClause(f data.Filter) (string, []any, error) {
	op := data.Operation(strings.ToUpper(string(f.Operation)))
	switch op {
	case data.OpAnd, data.OpOr:
		if len(f.Children) == 0 {
			return "1 = 1", nil, nil
		}
		parts := make([]string, 0, len(f.Children))
		var args []any
		for _, child := range f.Children {
			clause, childArgs, err := p.whereClause(child)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, "("+clause+")")
			args = append(args, childArgs...)
		}
		return strings.Join(parts, " "+string(op)+" "), args, nil
	}

	column := p.column(f.Property)
	if !identifierPattern.MatchString(column) {
		return "", nil, fmt.Errorf("sqlprovider: invalid filter property %q", f.Property)
	}
	quoted := p.quote(column)

	switch op {
	case data.OpEqual, data.OpNotEqual, data.OpLess, data.OpGreater:
		return quoted + " " + string(op) + " ?", []any{f.Value}, nil
	case data.OpLike:
		pattern := strings.NewReplacer("*", "%", "?", "_").Replace(data.ToString(f.Value))
		return quoted + " LIKE ?", []any{pattern}, nil
	case data.OpIn:
		if len(f.Values) == 0 {
			return "1 = 0", nil, nil
		}
		return quoted + " IN (" + placeholders(len(f.Values)) + ")", append([]any(nil), f.Values...), nil
	default:
		return "", nil, fmt.Errorf("sqlprovider: unsupported filter operation %q", f.Operation)
	}
}

func (p *Provider) column(property string) string {
	if property == "id" {
		return p.idColumn
	}
	return property
}

func (p *Provider) quote(identifier string) string {
	if p.dialect == DialectMySQL {
		return "`" + identifier + "`"
	}
	return `"` + identifier + `"`
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func normalizeValue(value any) any {
	if b, ok := value.([]byte); ok {
		return string(b)
	}
	return value
}
