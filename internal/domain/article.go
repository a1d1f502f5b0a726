package domain

import "fmt"

// Article is one indexed chunk of a repository record. A source record with
// N chunks produces N articles sharing bitstream_uuid, author, dates and
// enrichment; title, abstract and vectors are chunk-local.
type Article struct {
	Collection          string           `json:"collection"`
	BitstreamUUID       string           `json:"bitstream_uuid"`
	ChunkID             int              `json:"chunk_id"`
	Title               *LocalizedText   `json:"title,omitempty"`
	Abstract            *LocalizedText   `json:"abstract,omitempty"`
	AbstractVector      *LocalizedVector `json:"abstract_vector,omitempty"`
	Author              []string         `json:"author"`
	HasFiles            bool             `json:"hasFiles"`
	PublicationDate     string           `json:"publicationDate,omitempty"`
	GeoReferences       []GeoReference   `json:"geoReferences"`
	TemporalExpressions []string         `json:"temporalExpressions"`
}

// DocID is the index document id: chunks of one record stay adjacent and
// re-ingestion overwrites in place.
func (a Article) DocID() string {
	return fmt.Sprintf("%s_%d", a.BitstreamUUID, a.ChunkID)
}
