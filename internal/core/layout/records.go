package layout

// Account names as the ledger program declares them
const (
	NameProtocolState    = "ProtocolState"
	NameEntityIdentity   = "EntityIdentity"
	NameEntityReputation = "EntityReputation"
)

// RatingBuckets is the number of star buckets in a reputation histogram
const RatingBuckets = 5

// ProtocolState is the program wide singleton
type ProtocolState struct {
	Authority   string `json:"authority"`
	EntityCount uint64 `json:"entity_count"`
	FeeBps      uint16 `json:"fee_bps"`
}

// Schema implements Record
func (p *ProtocolState) Schema() Schema {
	return Schema{Name: NameProtocolState, Fields: []Field{
		PubkeyField("authority", &p.Authority),
		U64Field("entity_count", &p.EntityCount),
		U16Field("fee_bps", &p.FeeBps),
	}}
}

// EntityIdentity is the registration record of one entity
type EntityIdentity struct {
	ID            uint64 `json:"id"`
	Owner         string `json:"owner"`
	PayoutAddress string `json:"payout_address"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	URI           string `json:"uri"`
	Active        bool   `json:"active"`
	CreatedAt     int64  `json:"created_at"`
	UpdatedAt     int64  `json:"updated_at"`
}

// Schema implements Record
func (e *EntityIdentity) Schema() Schema {
	return Schema{Name: NameEntityIdentity, Fields: []Field{
		U64Field("id", &e.ID),
		PubkeyField("owner", &e.Owner),
		PubkeyField("payout_address", &e.PayoutAddress),
		StringField("name", &e.Name),
		StringField("description", &e.Description),
		StringField("uri", &e.URI),
		BoolField("active", &e.Active),
		I64Field("created_at", &e.CreatedAt),
		I64Field("updated_at", &e.UpdatedAt),
	}}
}

// EntityReputation aggregates ratings and paid volume for one entity
type EntityReputation struct {
	ID                 uint64                `json:"id"`
	TotalRatings       uint64                `json:"total_ratings"`
	RatingSum          uint64                `json:"rating_sum"`
	TotalVolume        uint64                `json:"total_volume"`
	UniqueRaters       uint64                `json:"unique_raters"`
	RatingDistribution [RatingBuckets]uint64 `json:"rating_distribution"`
}

// Schema implements Record
func (e *EntityReputation) Schema() Schema {
	return Schema{Name: NameEntityReputation, Fields: []Field{
		U64Field("id", &e.ID),
		U64Field("total_ratings", &e.TotalRatings),
		U64Field("rating_sum", &e.RatingSum),
		U64Field("total_volume", &e.TotalVolume),
		U64Field("unique_raters", &e.UniqueRaters),
		U64ArrayField("rating_distribution", e.RatingDistribution[:]),
	}}
}

// Average is RatingSum / TotalRatings, zero when unrated
func (e EntityReputation) Average() float64 {
	if e.TotalRatings == 0 {
		return 0
	}
	return float64(e.RatingSum) / float64(e.TotalRatings)
}

// DecodeProtocolState returns a fresh snapshot decoded from buf
func DecodeProtocolState(buf []byte) (ProtocolState, error) {
	var v ProtocolState
	if err := Decode(buf, &v); err != nil {
		return ProtocolState{}, err
	}
	return v, nil
}

// DecodeEntityIdentity returns a fresh snapshot decoded from buf
func DecodeEntityIdentity(buf []byte) (EntityIdentity, error) {
	var v EntityIdentity
	if err := Decode(buf, &v); err != nil {
		return EntityIdentity{}, err
	}
	return v, nil
}

// DecodeEntityReputation returns a fresh snapshot decoded from buf
func DecodeEntityReputation(buf []byte) (EntityReputation, error) {
	var v EntityReputation
	if err := Decode(buf, &v); err != nil {
		return EntityReputation{}, err
	}
	return v, nil
}

var known = map[[DiscriminatorLen]byte]string{
	Discriminator(NameProtocolState):    NameProtocolState,
	Discriminator(NameEntityIdentity):   NameEntityIdentity,
	Discriminator(NameEntityReputation): NameEntityReputation,
}

// Classify names the account type a blob belongs to from its discriminator
// ok is false for short buffers and unknown headers
func Classify(buf []byte) (name string, ok bool) {
	if len(buf) < DiscriminatorLen {
		return "", false
	}
	var d [DiscriminatorLen]byte
	copy(d[:], buf[:DiscriminatorLen])
	name, ok = known[d]
	return name, ok
}
