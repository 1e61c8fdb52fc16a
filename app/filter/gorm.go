package filter

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Apply adds the conditions, ordering and paging of q to db. Column names
// come from the schema, never from user input.
func Apply(db *gorm.DB, q *Query) *gorm.DB {
	if q == nil {
		return db
	}

	for _, cond := range q.Conditions {
		db = applyCondition(db, cond)
	}

	for _, order := range q.Orders {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: order.Column}, Desc: order.Desc})
	}

	if q.PageSize > 0 {
		page := max(q.Page, 1)
		db = db.Limit(q.PageSize).Offset((page - 1) * q.PageSize)
	}

	return db
}

func applyCondition(db *gorm.DB, cond Condition) *gorm.DB {
	switch cond.Operator {
	case OpEqual:
		return db.Where(fmt.Sprintf("%s = ?", cond.Column), cond.Value)
	case OpNotEqual:
		return db.Where(fmt.Sprintf("%s <> ?", cond.Column), cond.Value)
	case OpGreater:
		return db.Where(fmt.Sprintf("%s > ?", cond.Column), cond.Value)
	case OpLess:
		return db.Where(fmt.Sprintf("%s < ?", cond.Column), cond.Value)
	case OpGreaterOrEqual:
		return db.Where(fmt.Sprintf("%s >= ?", cond.Column), cond.Value)
	case OpLessOrEqual:
		return db.Where(fmt.Sprintf("%s <= ?", cond.Column), cond.Value)
	case OpContains:
		return db.Where(fmt.Sprintf("%s LIKE ?", cond.Column), "%"+likeEscaper.Replace(fmt.Sprint(cond.Value))+"%")
	case OpStartsWith:
		return db.Where(fmt.Sprintf("%s LIKE ?", cond.Column), likeEscaper.Replace(fmt.Sprint(cond.Value))+"%")
	default:
		return db
	}
}
