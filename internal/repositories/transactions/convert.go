package transactions

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// toMinor converts an amount for storage. Amounts that would lose cents or
// overflow the column are refused rather than rounded.
func toMinor(field string, d decimal.Decimal) (int64, error) {
	v, ok := models.MinorUnits(d)
	if !ok {
		return 0, fmt.Errorf("%s %s is not storable as cents: %w", field, d, common.ErrValidation)
	}
	return v, nil
}

func fromMinor(v int64) decimal.Decimal {
	return models.FromMinorUnits(v)
}

func formatDate(t time.Time) string {
	return t.Format(common.DateLayout)
}

// rangeConds appends the bounds of r on col to conds.
func rangeConds(col string, r models.DateRange, conds []string, args []any) ([]string, []any) {
	if !r.From.IsZero() {
		conds = append(conds, col+" >= ?")
		args = append(args, formatDate(r.From))
	}
	if !r.To.IsZero() {
		conds = append(conds, col+" <= ?")
		args = append(args, formatDate(r.To))
	}
	return conds, args
}

// foldCase is the Unicode case folding applied to descriptions when they are
// stored and to search terms when they are queried. SQL LOWER is not used
// because SQLite only folds ASCII.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching the folded s anywhere, with
// the wildcards of s taken literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(foldCase(s)) + "%"
}
