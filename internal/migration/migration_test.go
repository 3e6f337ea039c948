package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaOrdersTablesBeforeIndexes(t *testing.T) {
	created := map[string]bool{}
	for _, s := range NewRunner().steps {
		sql := strings.ToUpper(s.sql)
		switch {
		case strings.Contains(sql, "CREATE TABLE"):
			for _, table := range []string{"DATASETS", "ANALYSIS_CONFIGURATIONS", "ANALYSIS_REPORTS"} {
				if strings.Contains(sql, "EXISTS "+table+" ") {
					created[table] = true
				}
			}
		case strings.Contains(sql, " ON ANALYSIS_CONFIGURATIONS"):
			assert.True(t, created["ANALYSIS_CONFIGURATIONS"], s.name)
		case strings.Contains(sql, " ON ANALYSIS_REPORTS"):
			assert.True(t, created["ANALYSIS_REPORTS"], s.name)
		}
	}
	assert.Len(t, created, 3)
}

func TestSchemaHasPartialDefaultIndex(t *testing.T) {
	var found bool
	for _, s := range NewRunner().steps {
		if strings.Contains(s.sql, "UNIQUE INDEX") && strings.Contains(s.sql, "WHERE is_default") {
			found = true
		}
	}
	assert.True(t, found)
	assert.Equal(t, "1.0.0", NewRunner().Version())
}
