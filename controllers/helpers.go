package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// parseBoolQuery lee un parámetro booleano. El segundo valor indica si el
// parámetro venía en la petición con un valor reconocible.
func parseBoolQuery(c *gin.Context, name string) (bool, bool) {
	raw := strings.ToLower(c.Query(name))
	switch raw {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

// orderingClause traduce el parámetro ?ordering= estilo "-campo" a una
// cláusula ORDER BY, limitada a columnas permitidas.
func orderingClause(c *gin.Context, allowed map[string]string, fallback string) string {
	raw := c.Query("ordering")
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	clauses := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		field := strings.TrimPrefix(part, "-")
		column, ok := allowed[field]
		if !ok {
			continue
		}
		if desc {
			column += " DESC"
		}
		clauses = append(clauses, column)
	}
	if len(clauses) == 0 {
		return fallback
	}
	return strings.Join(clauses, ", ")
}
