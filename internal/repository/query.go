package repository

import (
	"fmt"
	"strings"

	"github.com/unisphere/unisphere-api/internal/models"
)

// whereClause accumulates positional filter conditions.
type whereClause struct {
	conditions []string
	args       []interface{}
}

func (w *whereClause) next() int {
	return len(w.args) + 1
}

// equals adds a case-sensitive equality filter.
func (w *whereClause) equals(column string, value interface{}) {
	w.conditions = append(w.conditions, fmt.Sprintf("%s = $%d", column, w.next()))
	w.args = append(w.args, value)
}

// equalsFold adds a case-insensitive equality filter.
func (w *whereClause) equalsFold(column, value string) {
	w.conditions = append(w.conditions, fmt.Sprintf("LOWER(%s) = $%d", column, w.next()))
	w.args = append(w.args, strings.ToLower(value))
}

// contains adds an array membership filter on a text[] column.
func (w *whereClause) contains(column, value string) {
	w.conditions = append(w.conditions, fmt.Sprintf("$%d = ANY(%s)", w.next(), column))
	w.args = append(w.args, value)
}

// search matches term as a case-insensitive substring of any column.
func (w *whereClause) search(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return
	}
	n := w.next()
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, fmt.Sprintf(`LOWER(%s) LIKE $%d ESCAPE '\'`, col, n))
	}
	w.conditions = append(w.conditions, "("+strings.Join(parts, " OR ")+")")
	w.args = append(w.args, "%"+likeEscaper.Replace(strings.ToLower(term))+"%")
}

// likeEscaper makes LIKE metacharacters in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// raw adds a condition whose single placeholder is written as %d.
func (w *whereClause) raw(condition string, value interface{}) {
	w.conditions = append(w.conditions, fmt.Sprintf(condition, w.next()))
	w.args = append(w.args, value)
}

func (w *whereClause) String() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " AND " + strings.Join(w.conditions, " AND ")
}

// sortSpec maps API sort keys to columns.
type sortSpec struct {
	columns      map[string]string
	defaultKey   string
	defaultOrder string
}

func (s sortSpec) clause(opts models.ListOptions) string {
	column, ok := s.columns[opts.SortBy]
	if !ok {
		column = s.columns[s.defaultKey]
	}
	order := strings.ToUpper(opts.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = s.defaultOrder
	}
	return fmt.Sprintf("ORDER BY %s %s", column, order)
}

func pageClause(opts models.ListOptions) string {
	_, size, offset := opts.Normalize()
	return fmt.Sprintf("LIMIT %d OFFSET %d", size, offset)
}
