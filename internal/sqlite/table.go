package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/braude/garage/pkg/types"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

// table implements types.Table for one entity definition.
type table struct {
	def     *entityDef
	backend *Backend
}

// Get returns the entity pointer stored under id.
func (t *table) Get(id int64) (any, error) {
	if id <= 0 {
		return nil, types.ErrInvalidID
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrBackendDetached
	}
	return t.get(t.backend.db, id)
}

func (t *table) get(q querier, id int64) (any, error) {
	row := q.QueryRow(fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", t.def.columnList(), t.def.table), id)
	e, err := t.def.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", t.def.resource, id, err)
	}
	return e, nil
}

// Set inserts data when id is zero and replaces the row under id otherwise.
// The id carried inside data is ignored.
func (t *table) Set(id int64, data any) (int64, error) {
	if id < 0 {
		return 0, types.ErrInvalidID
	}
	if data == nil || !t.def.accepts(data) {
		return 0, types.ErrInvalidData
	}
	args, err := t.def.values(data)
	if err != nil {
		return 0, err
	}

	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return 0, types.ErrBackendDetached
	}

	tx, err := t.backend.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin set %s: %w", t.def.resource, err)
	}
	defer tx.Rollback()

	if err := t.checkParents(tx, args); err != nil {
		return 0, err
	}

	cols := t.def.fields[1:]
	if id == 0 {
		names := make([]string, len(cols))
		for i, f := range cols {
			names[i] = f.column
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
		res, err := tx.Exec(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			t.def.table, strings.Join(names, ", "), placeholders), args[1:]...)
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", t.def.resource, err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, fmt.Errorf("insert %s: %w", t.def.resource, err)
		}
	} else {
		sets := make([]string, len(cols))
		for i, f := range cols {
			sets[i] = f.column + " = ?"
		}
		res, err := tx.Exec(fmt.Sprintf("UPDATE %s SET %s WHERE id = ?",
			t.def.table, strings.Join(sets, ", ")), append(args[1:], id)...)
		if err != nil {
			return 0, fmt.Errorf("update %s %d: %w", t.def.resource, id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return 0, types.ErrNotFound
		}
	}

	if err := t.backend.persist(tx, t.def); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit set %s: %w", t.def.resource, err)
	}
	return id, nil
}

// checkParents verifies that every non-null reference in args names an
// existing parent row.
func (t *table) checkParents(q querier, args []any) error {
	for i, f := range t.def.fields {
		parent, ok := t.def.parents[f.column]
		if !ok || args[i] == nil {
			continue
		}
		pd, _ := defByResource(parent)
		var exists bool
		err := q.QueryRow(fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = ?)", pd.table), args[i]).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check %s: %w", f.json, err)
		}
		if !exists {
			return fmt.Errorf("%s %v: %w", f.json, args[i], types.ErrInvalidReference)
		}
	}
	return nil
}

// Delete removes the row under id and clears references held by child rows.
func (t *table) Delete(id int64) error {
	if id <= 0 {
		return types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()
	if !t.backend.attached {
		return types.ErrBackendDetached
	}

	tx, err := t.backend.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete %s: %w", t.def.resource, err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.def.table), id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", t.def.resource, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}

	for _, c := range t.def.children {
		cd, _ := defByResource(c.resource)
		if _, err := tx.Exec(fmt.Sprintf("UPDATE %s SET %s = NULL WHERE %s = ?", cd.table, c.column, c.column), id); err != nil {
			return fmt.Errorf("clear %s.%s: %w", cd.table, c.column, err)
		}
		if err := t.backend.persist(tx, cd); err != nil {
			return err
		}
	}
	if err := t.backend.persist(tx, t.def); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete %s: %w", t.def.resource, err)
	}
	return nil
}

// Fetch returns entity pointers matching q.
func (t *table) Fetch(q types.Query) ([]any, error) {
	where, args, err := t.where(q)
	if err != nil {
		return nil, err
	}
	order, err := t.orderBy(q.Sort)
	if err != nil {
		return nil, err
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s%s%s", t.def.columnList(), t.def.table, where, order)
	if q.Limit > 0 {
		stmt += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	} else if q.Offset > 0 {
		stmt += " LIMIT -1 OFFSET ?"
		args = append(args, q.Offset)
	}

	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return nil, types.ErrBackendDetached
	}

	rows, err := t.backend.db.Query(stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", t.def.resource, err)
	}
	defer rows.Close()

	out := []any{}
	for rows.Next() {
		e, err := t.def.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", t.def.resource, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of rows matching q's criteria and search.
func (t *table) Count(q types.Query) (int64, error) {
	where, args, err := t.where(q)
	if err != nil {
		return 0, err
	}

	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached {
		return 0, types.ErrBackendDetached
	}

	var n int64
	if err := t.backend.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s%s", t.def.table, where), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", t.def.resource, err)
	}
	return n, nil
}

// where builds the WHERE clause for q. Field names come from the entity
// definition only; values are always bound.
func (t *table) where(q types.Query) (string, []any, error) {
	var (
		conds []string
		args  []any
	)
	for _, c := range q.Criteria {
		f, ok := t.def.fieldByJSON(c.Field)
		if !ok {
			return "", nil, fmt.Errorf("unknown field %q: %w", c.Field, types.ErrInvalidFilter)
		}
		cond, arg, err := condition(f, c)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, cond)
		args = append(args, arg...)
	}

	if s := strings.TrimSpace(q.Search); s != "" {
		var ors []string
		for _, col := range t.def.search {
			ors = append(ors, col+" LIKE ? ESCAPE '\\'")
			args = append(args, "%"+escapeLike(s)+"%")
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func condition(f field, c types.Criterion) (string, []any, error) {
	col := f.column
	if f.kind == kindMoney {
		col = "CAST(" + col + " AS REAL)"
	}

	switch c.Op {
	case types.OpSpecified:
		set := c.Value == "true"
		if f.kind == kindText {
			if set {
				return f.column + " <> ''", nil, nil
			}
			return f.column + " = ''", nil, nil
		}
		if set {
			return f.column + " IS NOT NULL", nil, nil
		}
		return f.column + " IS NULL", nil, nil
	case types.OpContains:
		return f.column + " LIKE ? ESCAPE '\\'", []any{"%" + escapeLike(c.Value) + "%"}, nil
	}

	arg, err := criterionValue(f, c.Value)
	if err != nil {
		return "", nil, err
	}
	switch c.Op {
	case types.OpEquals:
		return col + " = ?", []any{arg}, nil
	case types.OpNotEquals:
		return "(" + f.column + " IS NULL OR " + col + " <> ?)", []any{arg}, nil
	case types.OpGreaterThan:
		return col + " > ?", []any{arg}, nil
	case types.OpLessThan:
		return col + " < ?", []any{arg}, nil
	default:
		return "", nil, fmt.Errorf("operator %q: %w", c.Op, types.ErrInvalidFilter)
	}
}

// criterionValue converts a query-string value to the column's type.
func criterionValue(f field, v string) (any, error) {
	switch f.kind {
	case kindInt:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not an integer: %w", f.json, v, types.ErrInvalidFilter)
		}
		return n, nil
	case kindMoney:
		m, err := types.NewMoney(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number: %w", f.json, v, types.ErrInvalidFilter)
		}
		r, _ := m.Float64()
		return r, nil
	case kindDate:
		if _, err := types.ParseDate(v); err != nil {
			return nil, fmt.Errorf("%s: %q is not a date: %w", f.json, v, types.ErrInvalidFilter)
		}
		return v, nil
	default:
		return v, nil
	}
}

// orderBy builds the ORDER BY clause. Rows tie-break on id ascending so
// pages are stable.
func (t *table) orderBy(sort []types.SortOrder) (string, error) {
	parts := make([]string, 0, len(sort)+1)
	hasID := false
	for _, s := range sort {
		f, ok := t.def.fieldByJSON(s.Field)
		if !ok {
			return "", fmt.Errorf("unknown sort field %q: %w", s.Field, types.ErrInvalidFilter)
		}
		col := f.column
		if f.kind == kindMoney {
			col = "CAST(" + col + " AS REAL)"
		}
		dir := " ASC"
		if s.Desc {
			dir = " DESC"
		}
		parts = append(parts, col+dir)
		hasID = hasID || f.column == "id"
	}
	if !hasID {
		parts = append(parts, "id ASC")
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
