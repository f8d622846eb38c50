package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/roamio-app/roamio-backend/internal/domain"
	"github.com/roamio-app/roamio-backend/internal/repository/ports"
)

type PlaceRepository struct {
	db *sqlx.DB
}

func NewPlaceRepo(db *sqlx.DB) *PlaceRepository {
	return &PlaceRepository{db: db}
}

// tableFor maps the kind tag to its table. Table names never come from user
// input; the enum is the whole vocabulary.
func tableFor(kind domain.PlaceKind) (string, error) {
	switch kind {
	case domain.PlaceKindAttraction:
		return "attraction", nil
	case domain.PlaceKindRestaurant:
		return "restaurant", nil
	}
	return "", fmt.Errorf("unknown place kind %q", kind)
}

const placeColumns = `id, name, description, website, contact_email, contact_phone,
	open_hours, address, longitude, latitude, overall_rating, tags, cost,
	created_user_id, created_at, updated_at`

// haversineExpr computes the great-circle distance in meters from the row's
// point to ($lat, $lng). Positional indexes are injected by the builder.
func haversineExpr(latArg, lngArg int) string {
	return fmt.Sprintf(`6371000 * 2 * asin(sqrt(
		pow(sin(radians(p.latitude - $%d) / 2), 2) +
		cos(radians($%d)) * cos(radians(p.latitude)) *
		pow(sin(radians(p.longitude - $%d) / 2), 2)))`, latArg, latArg, lngArg)
}

type placeRow struct {
	ID            uuid.UUID       `db:"id"`
	Name          string          `db:"name"`
	Description   *string         `db:"description"`
	Website       *string         `db:"website"`
	ContactEmail  *string         `db:"contact_email"`
	ContactPhone  *string         `db:"contact_phone"`
	OpenHours     json.RawMessage `db:"open_hours"`
	Address       string          `db:"address"`
	Longitude     float64         `db:"longitude"`
	Latitude      float64         `db:"latitude"`
	OverallRating *float64        `db:"overall_rating"`
	Tags          pq.StringArray  `db:"tags"`
	Cost          int             `db:"cost"`
	CreatedUserID uuid.UUID       `db:"created_user_id"`
	CreatedAt     sql.NullTime    `db:"created_at"`
	UpdatedAt     sql.NullTime    `db:"updated_at"`
	Distance      *float64        `db:"distance"`
	TotalCount    *int            `db:"total_count"`
}

func (r placeRow) toDomain(kind domain.PlaceKind) (domain.Place, error) {
	place := domain.Place{
		ID:            r.ID,
		Kind:          kind,
		Name:          r.Name,
		Description:   r.Description,
		Website:       r.Website,
		ContactEmail:  r.ContactEmail,
		ContactPhone:  r.ContactPhone,
		Address:       domain.Address{Formatted: r.Address, Location: domain.GeoPoint{Longitude: r.Longitude, Latitude: r.Latitude}},
		OverallRating: r.OverallRating,
		Cost:          r.Cost,
		CreatedUserID: r.CreatedUserID,
		Distance:      r.Distance,
	}
	if r.CreatedAt.Valid {
		place.CreatedAt = r.CreatedAt.Time
	}
	if r.UpdatedAt.Valid {
		place.UpdatedAt = r.UpdatedAt.Time
	}
	if len(r.OpenHours) > 0 {
		if err := json.Unmarshal(r.OpenHours, &place.OpenHours); err != nil {
			return domain.Place{}, fmt.Errorf("decode open hours: %w", err)
		}
	}
	if len(r.Tags) > 0 {
		place.Tags = []string(r.Tags)
	}
	return place, nil
}

// buildPlaceListQuery assembles the listing statement in a fixed stage order:
// geo distance first (it introduces the distance column later stages filter
// and the caller reads back), open-now derivation second, the conjunctive
// match third, then sort/skip/limit with a window count so the page and the
// pre-pagination total come back in a single round trip.
func buildPlaceListQuery(table string, opts domain.PlaceListOptions) (string, []any) {
	args := []any{}
	next := func(v any) int {
		args = append(args, v)
		return len(args)
	}

	filter := opts.Filter

	inner := fmt.Sprintf("SELECT %s FROM %s p", placeColumns, table)
	if filter.Origin != nil {
		latArg := next(filter.Origin.Latitude)
		lngArg := next(filter.Origin.Longitude)
		inner = fmt.Sprintf("SELECT %s, %s AS distance FROM %s p", placeColumns, haversineExpr(latArg, lngArg), table)
	}

	clauses := []string{}
	if filter.Origin != nil {
		maxDistance := domain.DefaultSearchMaxDistance
		if filter.MaxDistance != nil {
			maxDistance = *filter.MaxDistance
		}
		clauses = append(clauses, fmt.Sprintf("p.distance <= $%d", next(maxDistance)))
	}
	if len(filter.Tags) > 0 {
		// Array overlap gives the any-of semantics in one bound parameter.
		clauses = append(clauses, fmt.Sprintf("p.tags && $%d", next(pq.StringArray(filter.Tags))))
	}
	if filter.MaxCost != nil {
		clauses = append(clauses, fmt.Sprintf("p.cost <= $%d", next(*filter.MaxCost)))
	}
	if filter.MinRating != nil {
		clauses = append(clauses, fmt.Sprintf("p.overall_rating >= $%d", next(*filter.MinRating)))
	}
	if filter.IsOpenNow {
		day, clock := domain.WeekdayAndClock(filter.CurrentTime)
		dayArg := next(day)
		clockArg := next(clock)
		// Both checks are required: a day can be flagged closed even though
		// a period spans the clock, and a non-closed day with no matching
		// period is still closed.
		clauses = append(clauses, fmt.Sprintf(
			"NOT COALESCE((p.open_hours->$%d->>'isClosed')::boolean, false)", dayArg))
		clauses = append(clauses, fmt.Sprintf(
			`(COALESCE((p.open_hours->$%d->>'isOpenAllDay')::boolean, false) OR EXISTS (
			SELECT 1 FROM jsonb_array_elements(COALESCE(p.open_hours->$%d->'periods', '[]'::jsonb)) period
			WHERE period->>'open' <= $%d AND period->>'close' > $%d))`,
			dayArg, dayArg, clockArg, clockArg))
	}

	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}

	orderBy := sortClause(opts.Sort)

	limitArg := next(opts.Limit)
	skipArg := next(opts.Skip)

	query := fmt.Sprintf(`
		SELECT p.*, COUNT(*) OVER() AS total_count
		FROM (%s) p
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, inner, where, orderBy, limitArg, skipArg)

	return query, args
}

// buildPlaceCountQuery repeats the listing match without pagination. Used as
// a fallback when a page beyond the last row comes back empty and the window
// count is unavailable.
func buildPlaceCountQuery(table string, opts domain.PlaceListOptions) (string, []any) {
	query, args := buildPlaceListQuery(table, opts)
	// The listing query always ends with ORDER BY ... LIMIT $n OFFSET $n+1;
	// cut at the ORDER BY and count the filtered set instead.
	idx := strings.LastIndex(query, "ORDER BY")
	trimmed := query[:idx]
	trimmed = strings.Replace(trimmed, "SELECT p.*, COUNT(*) OVER() AS total_count", "SELECT COUNT(*)", 1)
	return trimmed, args[:len(args)-2]
}

func sortClause(sort domain.PlaceSort) string {
	// Secondary id key keeps pagination stable when the primary key ties.
	switch sort {
	case domain.PlaceSortRatingAsc:
		return "p.overall_rating ASC NULLS FIRST, p.id DESC"
	case domain.PlaceSortCostAsc:
		return "p.cost ASC, p.id DESC"
	case domain.PlaceSortCostDesc:
		return "p.cost DESC, p.id DESC"
	default:
		return "p.overall_rating DESC NULLS LAST, p.id DESC"
	}
}

func (r *PlaceRepository) List(ctx context.Context, kind domain.PlaceKind, opts domain.PlaceListOptions) (*domain.PlaceListResult, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query, args := buildPlaceListQuery(table, opts)
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &domain.PlaceListResult{
		Skip:  opts.Skip,
		Limit: opts.Limit,
		Data:  []domain.Place{},
	}

	for rows.Next() {
		var row placeRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		place, err := row.toDomain(kind)
		if err != nil {
			return nil, err
		}
		if row.TotalCount != nil {
			result.Total = *row.TotalCount
		}
		result.Data = append(result.Data, place)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// An empty page past the end of the result set loses the window count;
	// recount the filtered set so Total stays truthful.
	if len(result.Data) == 0 && opts.Skip > 0 {
		countQuery, countArgs := buildPlaceCountQuery(table, opts)
		if err := r.db.GetContext(ctx, &result.Total, countQuery, countArgs...); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// escapeLikePattern neutralizes LIKE metacharacters so user keywords match
// literally. Backslash is the default escape character in Postgres.
func escapeLikePattern(keyword string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(keyword)
}

// buildSearchQuery covers both keyword-search modes: plain substring match in
// natural order, or distance-bounded nearest-first when an origin is given.
func buildSearchQuery(table, keyword string, limit int, origin *domain.GeoPoint, maxDistance *float64) (string, []any) {
	pattern := "%" + escapeLikePattern(keyword) + "%"

	if origin == nil {
		query := fmt.Sprintf(`
			SELECT %s
			FROM %s p
			WHERE p.name ILIKE $1 OR p.description ILIKE $1
			LIMIT $2
		`, placeColumns, table)
		return query, []any{pattern, limit}
	}

	bound := domain.DefaultSearchMaxDistance
	if maxDistance != nil {
		bound = *maxDistance
	}
	query := fmt.Sprintf(`
		SELECT p.*
		FROM (SELECT %s, %s AS distance FROM %s p) p
		WHERE (p.name ILIKE $3 OR p.description ILIKE $3)
		  AND p.distance <= $4
		ORDER BY p.distance ASC
		LIMIT $5
	`, placeColumns, haversineExpr(1, 2), table)
	return query, []any{origin.Latitude, origin.Longitude, pattern, bound, limit}
}

func (r *PlaceRepository) SearchByKeyword(ctx context.Context, kind domain.PlaceKind, keyword string, limit int, origin *domain.GeoPoint, maxDistance *float64) ([]domain.Place, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query, args := buildSearchQuery(table, keyword, limit, origin, maxDistance)
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var places []domain.Place
	for rows.Next() {
		var row placeRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		place, err := row.toDomain(kind)
		if err != nil {
			return nil, err
		}
		places = append(places, place)
	}
	return places, rows.Err()
}

func (r *PlaceRepository) Create(ctx context.Context, kind domain.PlaceKind, place *domain.Place) (*domain.Place, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	openHours, err := json.Marshal(place.OpenHours)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (name, description, website, contact_email, contact_phone,
			open_hours, address, longitude, latitude, tags, cost, created_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING %s
	`, table, placeColumns)

	var row placeRow
	err = r.db.GetContext(ctx, &row, query,
		place.Name, place.Description, place.Website, place.ContactEmail, place.ContactPhone,
		openHours, place.Address.Formatted, place.Address.Location.Longitude,
		place.Address.Location.Latitude, pq.StringArray(place.Tags), place.Cost, place.CreatedUserID)
	if err != nil {
		return nil, err
	}

	stored, err := row.toDomain(kind)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *PlaceRepository) Update(ctx context.Context, kind domain.PlaceKind, place *domain.Place) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	openHours, err := json.Marshal(place.OpenHours)
	if err != nil {
		return err
	}

	// overall_rating is deliberately absent: it belongs to the rating
	// pipeline and must never take a caller-supplied value.
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, description = $3, website = $4, contact_email = $5,
			contact_phone = $6, open_hours = $7, address = $8, longitude = $9,
			latitude = $10, tags = $11, cost = $12, updated_at = NOW()
		WHERE id = $1
	`, table)

	result, err := r.db.ExecContext(ctx, query, place.ID,
		place.Name, place.Description, place.Website, place.ContactEmail, place.ContactPhone,
		openHours, place.Address.Formatted, place.Address.Location.Longitude,
		place.Address.Location.Latitude, pq.StringArray(place.Tags), place.Cost)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PlaceRepository) Delete(ctx context.Context, kind domain.PlaceKind, id uuid.UUID) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	return err
}

func (r *PlaceRepository) FindByID(ctx context.Context, kind domain.PlaceKind, id uuid.UUID) (*domain.Place, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s p WHERE p.id = $1", placeColumns, table)

	var row placeRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	place, err := row.toDomain(kind)
	if err != nil {
		return nil, err
	}
	return &place, nil
}

func (r *PlaceRepository) UpdateOverallRating(ctx context.Context, kind domain.PlaceKind, id uuid.UUID, rating *float64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("UPDATE %s SET overall_rating = $2, updated_at = NOW() WHERE id = $1", table)
	result, err := r.db.ExecContext(ctx, query, id, rating)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

var _ ports.PlaceRepository = (*PlaceRepository)(nil)
