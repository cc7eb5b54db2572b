package repository

import (
	"fmt"
	"strings"

	"github.com/vortex07x/steamsurf/internal/model"
)

// ListQuery is the SQL pair for one catalog page.
type ListQuery struct {
	CountSQL  string
	CountArgs []any
	PageSQL   string
	PageArgs  []any
}

// engagementJoin is only needed when ordering by derived counts.
const engagementJoin = `
		LEFT JOIN (
			SELECT video_id,
			       COUNT(*) FILTER (WHERE type = 'view') AS views,
			       COUNT(*) FILTER (WHERE type = 'like') AS likes
			FROM interactions
			GROUP BY video_id
		) s ON s.video_id = v.id`

var sortColumns = map[model.SortKey]string{
	model.SortCreatedAt: "v.created_at",
	model.SortTitle:     "v.title",
	model.SortDuration:  "v.duration",
	model.SortViews:     "COALESCE(s.views, 0)",
	model.SortLikes:     "COALESCE(s.likes, 0)",
}

// BuildListQuery renders the count and page queries for a catalog filter.
// Tags use array containment, so a video must carry every requested tag.
func BuildListQuery(f model.VideoFilter) ListQuery {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.PublishedOnly {
		where = append(where, "v.is_published = TRUE")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg("%" + escapeLike(s) + "%")
		where = append(where, fmt.Sprintf("(v.title ILIKE %s OR v.description ILIKE %s)", p, p))
	}
	if f.Category != "" {
		where = append(where, "v.category = "+arg(string(f.Category)))
	}
	if len(f.Tags) > 0 {
		where = append(where, "v.tags @> "+arg(f.Tags)+"::text[]")
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "\n\t\tWHERE " + strings.Join(where, " AND ")
	}

	sortBy := f.SortBy
	col, ok := sortColumns[sortBy]
	if !ok {
		sortBy = model.SortCreatedAt
		col = sortColumns[sortBy]
	}
	dir := strings.ToUpper(f.Order)
	if dir != "ASC" && dir != "DESC" {
		dir = model.DefaultOrder[sortBy]
	}

	join := ""
	if sortBy == model.SortViews || sortBy == model.SortLikes {
		join = engagementJoin
	}

	countArgs := append([]any(nil), args...)
	countSQL := `SELECT COUNT(*) FROM videos v` + whereSQL

	limit := arg(f.Limit)
	offset := arg(f.Offset())
	pageSQL := `
		SELECT ` + videoColumns + `
		FROM videos v` + join + whereSQL + `
		ORDER BY ` + col + ` ` + dir + `, v.created_at DESC, v.id
		LIMIT ` + limit + ` OFFSET ` + offset

	return ListQuery{
		CountSQL:  countSQL,
		CountArgs: countArgs,
		PageSQL:   pageSQL,
		PageArgs:  args,
	}
}

// escapeLike neutralizes LIKE wildcards in user input.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
