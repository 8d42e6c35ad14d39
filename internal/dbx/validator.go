package dbx

import (
	"fmt"
	"regexp"
	"strings"
)

// Common blocked SQL patterns across all databases
var blockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bINSERT\b`),
	regexp.MustCompile(`(?i)\bUPDATE\b`),
	regexp.MustCompile(`(?i)\bDELETE\b`),
	regexp.MustCompile(`(?i)\bDROP\b`),
	regexp.MustCompile(`(?i)\bTRUNCATE\b`),
	regexp.MustCompile(`(?i)\bALTER\b`),
	regexp.MustCompile(`(?i)\bCREATE\b`),
	regexp.MustCompile(`(?i)\bGRANT\b`),
	regexp.MustCompile(`(?i)\bREVOKE\b`),
	regexp.MustCompile(`(?i)\bEXEC\b`),
	regexp.MustCompile(`(?i)\bEXECUTE\b`),
	regexp.MustCompile(`(?i)\bINTO\s+OUTFILE\b`),
	regexp.MustCompile(`(?i)\bINTO\s+DUMPFILE\b`),
	regexp.MustCompile(`(?i)\bLOAD_FILE\b`),
	regexp.MustCompile(`(?i)\bLOAD\s+DATA\b`),
}

// PostgresBlockedPatterns blocks PostgreSQL specific escape hatches
var PostgresBlockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)pg_read_file`),
	regexp.MustCompile(`(?i)pg_write_file`),
	regexp.MustCompile(`(?i)pg_ls_dir`),
	regexp.MustCompile(`(?i)lo_import`),
	regexp.MustCompile(`(?i)lo_export`),
	regexp.MustCompile(`(?i)\bCOPY\b`),
	regexp.MustCompile(`(?i)dblink`),
}

// MysqlBlockedPatterns blocks MySQL specific escape hatches
var MysqlBlockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)LOAD_FILE`),
	regexp.MustCompile(`(?i)INTO\s+OUTFILE`),
	regexp.MustCompile(`(?i)INTO\s+DUMPFILE`),
}

// SqliteBlockedPatterns blocks SQLite specific escape hatches
var SqliteBlockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bATTACH\b`),
	regexp.MustCompile(`(?i)\bDETACH\b`),
	regexp.MustCompile(`(?i)load_extension`),
}

// ValidateSQL validates SQL for safety
func ValidateSQL(sql string, additionalPatterns []*regexp.Regexp) error {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return fmt.Errorf("empty SQL query")
	}

	// Check for multiple statements
	if strings.Count(sql, ";") > 1 {
		return fmt.Errorf("multiple statements not allowed")
	}

	// Must start with SELECT or WITH (for CTEs)
	normalized := strings.ToUpper(strings.TrimSpace(sql))
	if !strings.HasPrefix(normalized, "SELECT") && !strings.HasPrefix(normalized, "WITH") {
		return fmt.Errorf("only SELECT statements allowed")
	}

	// Check common blocked patterns
	for _, pattern := range blockedPatterns {
		if pattern.MatchString(sql) {
			return fmt.Errorf("blocked SQL pattern detected: %s", pattern.String())
		}
	}

	// Check database-specific patterns
	for _, pattern := range additionalPatterns {
		if pattern.MatchString(sql) {
			return fmt.Errorf("blocked SQL pattern detected: %s", pattern.String())
		}
	}

	return nil
}

// EnforceLimit appends a row limit if the query has none
func EnforceLimit(sql string, maxRows int, limitKeyword string) string {
	normalized := strings.ToUpper(sql)

	// Check if LIMIT already exists
	if strings.Contains(normalized, "LIMIT") {
		return sql
	}

	// Remove trailing semicolon if present
	sql = strings.TrimSuffix(strings.TrimSpace(sql), ";")

	return fmt.Sprintf("%s %s %d", sql, limitKeyword, maxRows)
}
