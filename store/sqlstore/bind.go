package sqlstore

import (
	"strconv"
	"strings"
)

// Queries are written with "?" placeholders; postgres wants "$n".
// (rebind idea lifted from github.com/jmoiron/sqlx, MIT license)

const (
	bindQuestion = iota
	bindDollar
)

func bindType(driverName string) int {
	switch driverName {
	case "postgres", "pgx", "pq-timeouts", "cloudsqlpostgres":
		return bindDollar
	}
	return bindQuestion
}

// rebind a query from "?" placeholders to the target bind type.
func rebind(bindType int, query string) string {
	if bindType == bindQuestion {
		return query
	}

	rqb := make([]byte, 0, len(query)+10)
	var i, j int
	for i = strings.Index(query, "?"); i != -1; i = strings.Index(query, "?") {
		rqb = append(rqb, query[:i]...)
		rqb = append(rqb, '$')
		j++
		rqb = strconv.AppendInt(rqb, int64(j), 10)
		query = query[i+1:]
	}
	return string(append(rqb, query...))
}
