package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/olivere/elastic/v7"

	"wander/internal/logger"
	"wander/internal/model"
)

const elasticPageSize = 20

// placesMapping is the index layout ElasticProvider expects.
const placesMapping = `{
  "mappings": {
    "properties": {
      "id":           {"type": "keyword"},
      "name":         {"type": "text"},
      "vicinity":     {"type": "text"},
      "types":        {"type": "keyword"},
      "rating":       {"type": "float"},
      "rating_count": {"type": "integer"},
      "photo":        {"type": "keyword", "index": false},
      "location":     {"type": "geo_point"}
    }
  }
}`

// placeDoc is one document in the places index.
type placeDoc struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Vicinity    string           `json:"vicinity"`
	Types       []string         `json:"types"`
	Rating      float64          `json:"rating"`
	RatingCount int              `json:"rating_count"`
	Photo       string           `json:"photo,omitempty"`
	Location    elastic.GeoPoint `json:"location"`
}

func (d placeDoc) toPlace() model.Place {
	return model.Place{
		ID:          d.ID,
		Name:        d.Name,
		Location:    model.GeoPoint{Lat: d.Location.Lat, Lng: d.Location.Lon},
		Rating:      d.Rating,
		RatingCount: d.RatingCount,
		PhotoRef:    d.Photo,
		Vicinity:    d.Vicinity,
	}
}

// ElasticProvider searches a self-hosted places index by geo distance. Pages
// are from/size windows and the cursor is the next offset.
type ElasticProvider struct {
	client *elastic.Client
	index  string
	log    *logger.Logger
}

func NewElasticProvider(url, index string, log *logger.Logger, opts ...elastic.ClientOptionFunc) (*ElasticProvider, error) {
	opts = append([]elastic.ClientOptionFunc{elastic.SetURL(url), elastic.SetSniff(false)}, opts...)
	client, err := elastic.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &ElasticProvider{client: client, index: index, log: log.WithComponent("elastic")}, nil
}

// EnsureIndex creates the places index with its mapping when it is missing.
func (es *ElasticProvider) EnsureIndex(ctx context.Context) error {
	exists, err := es.client.IndexExists(es.index).Do(ctx)
	if err != nil {
		return fmt.Errorf("check index %s: %w", es.index, err)
	}
	if exists {
		return nil
	}

	created, err := es.client.CreateIndex(es.index).BodyString(placesMapping).Do(ctx)
	if err != nil {
		return fmt.Errorf("create index %s: %w", es.index, err)
	}
	if !created.Acknowledged {
		es.log.Warnf("create index %s was not acknowledged", es.index)
	}
	return nil
}

func (es *ElasticProvider) Nearby(ctx context.Context, req model.PageRequest) (model.ResultPage, error) {
	from := 0
	if req.Cursor != "" {
		n, err := strconv.Atoi(req.Cursor)
		if err != nil || n < 0 {
			return model.ResultPage{}, fmt.Errorf("invalid elastic cursor %q", req.Cursor)
		}
		from = n
	}

	q := req.Query
	query := elastic.NewBoolQuery().Filter(
		elastic.NewGeoDistanceQuery("location").
			Lat(q.Center.Lat).
			Lon(q.Center.Lng).
			Distance(fmt.Sprintf("%dm", q.Radius)),
	)
	if q.Keyword != "" {
		query = query.Must(elastic.NewMultiMatchQuery(q.Keyword, "name", "vicinity"))
	}
	if q.Type != "" {
		query = query.Filter(elastic.NewTermQuery("types", string(q.Type)))
	}

	searchResult, err := es.client.Search().
		Index(es.index).
		Query(query).
		SortBy(elastic.NewGeoDistanceSort("location").
			Point(q.Center.Lat, q.Center.Lng).
			Asc().
			Unit("km").
			DistanceType("arc").
			IgnoreUnmapped(true)).
		From(from).
		Size(elasticPageSize).
		Do(ctx)
	if err != nil {
		return model.ResultPage{}, fmt.Errorf("elastic search failed: %w", err)
	}

	var places []model.Place
	for _, hit := range searchResult.Hits.Hits {
		var doc placeDoc
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			es.log.WithError(err).Warnf("skipping malformed document %s", hit.Id)
			continue
		}
		if doc.ID == "" {
			doc.ID = hit.Id
		}
		places = append(places, doc.toPlace())
	}

	page := model.ResultPage{Items: places}
	next := from + len(searchResult.Hits.Hits)
	if len(searchResult.Hits.Hits) > 0 && int64(next) < searchResult.TotalHits() {
		page.NextCursor = strconv.Itoa(next)
	}
	return page, nil
}
