package graphql

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"

	"github.com/roamio-app/roamio-backend/internal/domain"
	"github.com/roamio-app/roamio-backend/internal/service"
)

// Resolvers bundles the services the schema reads from. Mutations require an
// authenticated user in the request context.
type Resolvers struct {
	Places  *service.PlaceService
	Reviews *service.ReviewService
	Users   *service.UserService
}

var placeKindEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "PlaceKind",
	Values: graphql.EnumValueConfigMap{
		"ATTRACTION": &graphql.EnumValueConfig{Value: domain.PlaceKindAttraction},
		"RESTAURANT": &graphql.EnumValueConfig{Value: domain.PlaceKindRestaurant},
	},
})

var placeSortEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "PlaceSort",
	Values: graphql.EnumValueConfigMap{
		"RATING_ASC":  &graphql.EnumValueConfig{Value: domain.PlaceSortRatingAsc},
		"RATING_DESC": &graphql.EnumValueConfig{Value: domain.PlaceSortRatingDesc},
		"COST_ASC":    &graphql.EnumValueConfig{Value: domain.PlaceSortCostAsc},
		"COST_DESC":   &graphql.EnumValueConfig{Value: domain.PlaceSortCostDesc},
	},
})

var geoPointType = graphql.NewObject(graphql.ObjectConfig{
	Name: "GeoPoint",
	Fields: graphql.Fields{
		"lat": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Float),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(domain.GeoPoint).Latitude, nil
			},
		},
		"lng": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Float),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(domain.GeoPoint).Longitude, nil
			},
		},
	},
})

var addressType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Address",
	Fields: graphql.Fields{
		"formatted": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(domain.Address).Formatted, nil
			},
		},
		"location": &graphql.Field{
			Type: geoPointType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(domain.Address).Location, nil
			},
		},
	},
})

var photoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Photo",
	Fields: graphql.Fields{
		"id":       photoField(func(ph domain.Photo) interface{} { return ph.ID.String() }, graphql.ID),
		"url":      photoField(func(ph domain.Photo) interface{} { return ph.ImageURL }, graphql.String),
		"alt":      photoField(func(ph domain.Photo) interface{} { return ph.ImageAlt }, graphql.String),
		"ordering": photoField(func(ph domain.Photo) interface{} { return ph.Ordering }, graphql.Int),
	},
})

func photoField(pick func(domain.Photo) interface{}, typ graphql.Output) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return pick(p.Source.(domain.Photo)), nil
		},
	}
}

var placeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Place",
	Fields: graphql.Fields{
		"id":            placeField(func(pl domain.Place) interface{} { return pl.ID.String() }, graphql.NewNonNull(graphql.ID)),
		"kind":          placeField(func(pl domain.Place) interface{} { return pl.Kind }, placeKindEnum),
		"name":          placeField(func(pl domain.Place) interface{} { return pl.Name }, graphql.NewNonNull(graphql.String)),
		"description":   placeField(func(pl domain.Place) interface{} { return deref(pl.Description) }, graphql.String),
		"website":       placeField(func(pl domain.Place) interface{} { return deref(pl.Website) }, graphql.String),
		"contactEmail":  placeField(func(pl domain.Place) interface{} { return deref(pl.ContactEmail) }, graphql.String),
		"contactPhone":  placeField(func(pl domain.Place) interface{} { return deref(pl.ContactPhone) }, graphql.String),
		"overallRating": placeField(func(pl domain.Place) interface{} { return derefFloat(pl.OverallRating) }, graphql.Float),
		"tags":          placeField(func(pl domain.Place) interface{} { return pl.Tags }, graphql.NewList(graphql.String)),
		"cost":          placeField(func(pl domain.Place) interface{} { return pl.Cost }, graphql.Int),
		"distance":      placeField(func(pl domain.Place) interface{} { return derefFloat(pl.Distance) }, graphql.Float),
		"address":       placeField(func(pl domain.Place) interface{} { return pl.Address }, addressType),
		"photos":        placeField(func(pl domain.Place) interface{} { return pl.Photos }, graphql.NewList(photoType)),
		"createdAt":     placeField(func(pl domain.Place) interface{} { return pl.CreatedAt }, graphql.DateTime),
	},
})

func placeField(pick func(domain.Place) interface{}, typ graphql.Output) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			switch src := p.Source.(type) {
			case domain.Place:
				return pick(src), nil
			case *domain.Place:
				return pick(*src), nil
			}
			return nil, errors.New("unexpected source type")
		},
	}
}

var placePageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PlacePage",
	Fields: graphql.Fields{
		"total": pageField(func(r *domain.PlaceListResult) interface{} { return r.Total }),
		"skip":  pageField(func(r *domain.PlaceListResult) interface{} { return r.Skip }),
		"limit": pageField(func(r *domain.PlaceListResult) interface{} { return r.Limit }),
		"data": &graphql.Field{
			Type: graphql.NewList(placeType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source.(*domain.PlaceListResult).Data, nil
			},
		},
	},
})

func pageField(pick func(*domain.PlaceListResult) interface{}) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(graphql.Int),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return pick(p.Source.(*domain.PlaceListResult)), nil
		},
	}
}

var reviewType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Review",
	Fields: graphql.Fields{
		"id":             reviewField(func(r domain.Review) interface{} { return r.ID.String() }, graphql.NewNonNull(graphql.ID)),
		"placeId":        reviewField(func(r domain.Review) interface{} { return r.PlaceID.String() }, graphql.ID),
		"placeType":      reviewField(func(r domain.Review) interface{} { return r.PlaceType }, placeKindEnum),
		"title":          reviewField(func(r domain.Review) interface{} { return r.Title }, graphql.String),
		"description":    reviewField(func(r domain.Review) interface{} { return r.Description }, graphql.String),
		"rating":         reviewField(func(r domain.Review) interface{} { return r.Rating }, graphql.Int),
		"authorNickname": reviewField(func(r domain.Review) interface{} { return deref(r.AuthorNickname) }, graphql.String),
		"photos":         reviewField(func(r domain.Review) interface{} { return r.Photos }, graphql.NewList(photoType)),
		"createdAt":      reviewField(func(r domain.Review) interface{} { return r.CreatedAt }, graphql.DateTime),
	},
})

func reviewField(pick func(domain.Review) interface{}, typ graphql.Output) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			switch src := p.Source.(type) {
			case domain.Review:
				return pick(src), nil
			case *domain.Review:
				return pick(*src), nil
			}
			return nil, errors.New("unexpected source type")
		},
	}
}

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id":       userField(func(u *domain.User) interface{} { return u.ID.String() }, graphql.NewNonNull(graphql.ID)),
		"email":    userField(func(u *domain.User) interface{} { return u.Email }, graphql.String),
		"nickname": userField(func(u *domain.User) interface{} { return u.Nickname }, graphql.String),
		"role":     userField(func(u *domain.User) interface{} { return string(u.Role) }, graphql.String),
		"verified": userField(func(u *domain.User) interface{} { return u.Verified }, graphql.Boolean),
	},
})

func userField(pick func(*domain.User) interface{}, typ graphql.Output) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return pick(p.Source.(*domain.User)), nil
		},
	}
}

var placeListArgs = graphql.FieldConfigArgument{
	"sort":        &graphql.ArgumentConfig{Type: placeSortEnum},
	"limit":       &graphql.ArgumentConfig{Type: graphql.Int},
	"skip":        &graphql.ArgumentConfig{Type: graphql.Int},
	"tags":        &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
	"maxCost":     &graphql.ArgumentConfig{Type: graphql.Int},
	"minRating":   &graphql.ArgumentConfig{Type: graphql.Float},
	"openAt":      &graphql.ArgumentConfig{Type: graphql.DateTime},
	"lat":         &graphql.ArgumentConfig{Type: graphql.Float},
	"lng":         &graphql.ArgumentConfig{Type: graphql.Float},
	"maxDistance": &graphql.ArgumentConfig{Type: graphql.Float},
}

// NewSchema builds the executable schema over the given resolvers.
func NewSchema(r *Resolvers) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"attractions": &graphql.Field{
				Type: placePageType,
				Args: placeListArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.listPlaces(p, domain.PlaceKindAttraction)
				},
			},
			"restaurants": &graphql.Field{
				Type: placePageType,
				Args: placeListArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return r.listPlaces(p, domain.PlaceKindRestaurant)
				},
			},
			"place": &graphql.Field{
				Type: placeType,
				Args: graphql.FieldConfigArgument{
					"kind": &graphql.ArgumentConfig{Type: graphql.NewNonNull(placeKindEnum)},
					"id":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.getPlace,
			},
			"searchPlaces": &graphql.Field{
				Type: graphql.NewList(placeType),
				Args: graphql.FieldConfigArgument{
					"kind":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(placeKindEnum)},
					"q":           &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lat":         &graphql.ArgumentConfig{Type: graphql.Float},
					"lng":         &graphql.ArgumentConfig{Type: graphql.Float},
					"maxDistance": &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: r.searchPlaces,
			},
			"reviews": &graphql.Field{
				Type: graphql.NewList(reviewType),
				Args: graphql.FieldConfigArgument{
					"kind":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(placeKindEnum)},
					"placeId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"limit":   &graphql.ArgumentConfig{Type: graphql.Int},
					"offset":  &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: r.listReviews,
			},
			"me": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					user, ok := UserFromContext(p.Context)
					if !ok {
						return nil, errAuthRequired
					}
					return user, nil
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createReview": &graphql.Field{
				Type: reviewType,
				Args: graphql.FieldConfigArgument{
					"kind":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(placeKindEnum)},
					"placeId":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"title":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"description": &graphql.ArgumentConfig{Type: graphql.String},
					"rating":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: r.createReview,
			},
			"savePlace": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"kind":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(placeKindEnum)},
					"placeId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.savePlace,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}

var errAuthRequired = errors.New("authentication required")

func (r *Resolvers) listPlaces(p graphql.ResolveParams, kind domain.PlaceKind) (interface{}, error) {
	opts := domain.PlaceListOptions{}
	if sort, ok := p.Args["sort"].(domain.PlaceSort); ok {
		opts.Sort = sort
	}
	if limit, ok := p.Args["limit"].(int); ok {
		opts.Limit = limit
	}
	if skip, ok := p.Args["skip"].(int); ok {
		opts.Skip = skip
	}
	if tags, ok := p.Args["tags"].([]interface{}); ok {
		for _, tag := range tags {
			if s, ok := tag.(string); ok {
				opts.Filter.Tags = append(opts.Filter.Tags, s)
			}
		}
	}
	if maxCost, ok := p.Args["maxCost"].(int); ok {
		opts.Filter.MaxCost = &maxCost
	}
	if minRating, ok := p.Args["minRating"].(float64); ok {
		opts.Filter.MinRating = &minRating
	}
	if openAt, ok := argTime(p.Args["openAt"]); ok {
		opts.Filter.IsOpenNow = true
		opts.Filter.CurrentTime = openAt
	}
	opts.Filter.Origin = argOrigin(p.Args)
	if maxDistance, ok := p.Args["maxDistance"].(float64); ok {
		opts.Filter.MaxDistance = &maxDistance
	}

	return r.Places.List(p.Context, kind, opts)
}

func (r *Resolvers) getPlace(p graphql.ResolveParams) (interface{}, error) {
	ref, err := argPlaceRef(p.Args)
	if err != nil {
		return nil, err
	}
	return r.Places.Get(p.Context, ref)
}

func (r *Resolvers) searchPlaces(p graphql.ResolveParams) (interface{}, error) {
	kind := p.Args["kind"].(domain.PlaceKind)
	keyword, _ := p.Args["q"].(string)

	var maxDistance *float64
	if v, ok := p.Args["maxDistance"].(float64); ok {
		maxDistance = &v
	}
	return r.Places.Search(p.Context, kind, keyword, argOrigin(p.Args), maxDistance)
}

func (r *Resolvers) listReviews(p graphql.ResolveParams) (interface{}, error) {
	ref, err := argPlaceRef(p.Args)
	if err != nil {
		return nil, err
	}
	filter := domain.ReviewListFilter{}
	if limit, ok := p.Args["limit"].(int); ok {
		filter.Limit = limit
	}
	if offset, ok := p.Args["offset"].(int); ok {
		filter.Offset = offset
	}
	return r.Reviews.ListPlaceReviews(p.Context, ref, filter)
}

func (r *Resolvers) createReview(p graphql.ResolveParams) (interface{}, error) {
	user, ok := UserFromContext(p.Context)
	if !ok {
		return nil, errAuthRequired
	}
	ref, err := argPlaceRef(p.Args)
	if err != nil {
		return nil, err
	}

	input := service.ReviewCreateInput{
		Title:  p.Args["title"].(string),
		Rating: p.Args["rating"].(int),
	}
	if description, ok := p.Args["description"].(string); ok {
		input.Description = description
	}
	return r.Reviews.CreateReview(p.Context, user.ID, ref, input)
}

func (r *Resolvers) savePlace(p graphql.ResolveParams) (interface{}, error) {
	user, ok := UserFromContext(p.Context)
	if !ok {
		return nil, errAuthRequired
	}
	ref, err := argPlaceRef(p.Args)
	if err != nil {
		return nil, err
	}
	if err := r.Users.SavePlace(p.Context, user.ID, ref); err != nil {
		return nil, err
	}
	return true, nil
}

func argPlaceRef(args map[string]interface{}) (domain.PlaceRef, error) {
	kind, _ := args["kind"].(domain.PlaceKind)
	raw, _ := args["placeId"].(string)
	if raw == "" {
		raw, _ = args["id"].(string)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return domain.PlaceRef{}, errors.New("invalid place id")
	}
	return domain.PlaceRef{Kind: kind, ID: id}, nil
}

func argTime(v interface{}) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok && !t.IsZero()
}

func argOrigin(args map[string]interface{}) *domain.GeoPoint {
	lat, latOK := args["lat"].(float64)
	lng, lngOK := args["lng"].(float64)
	if !latOK || !lngOK {
		return nil
	}
	return &domain.GeoPoint{Latitude: lat, Longitude: lng}
}

func deref(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func derefFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
