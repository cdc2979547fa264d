package dto

// CollectionsResponse is the body of the collection registry listing.
type CollectionsResponse struct {
	Data []Collection `json:"data"`
}

// Collection is one registered book collection.
type Collection struct {
	CollectionID string `json:"collection_id"`
}

// Contains reports whether id is among the listed collections.
func (r *CollectionsResponse) Contains(id string) bool {
	for _, c := range r.Data {
		if c.CollectionID == id {
			return true
		}
	}
	return false
}

// Asset is one entry of a policy's asset listing.
type Asset struct {
	Asset    string `json:"asset"`
	Quantity string `json:"quantity,omitempty"`
}
