package entity

import "time"

// Subtype classifies a vendor as selling goods or labor.
type Subtype string

const (
	SubtypeCommerce Subtype = "COMMERCE"
	SubtypeService  Subtype = "SERVICE"
	// SubtypeAll is only meaningful as a filter value.
	SubtypeAll Subtype = "ALL"
)

// Visibility gates which contact fields the detail view reveals.
type Visibility struct {
	ShowPhone   bool `json:"showPhone" bson:"showPhone"`
	ShowAddress bool `json:"showAddress" bson:"showAddress"`
	ShowWebsite bool `json:"showWebsite" bson:"showWebsite"`
}

// Review is a rating left on a vendor. UserName is a snapshot taken when the
// review was written and is not re-synced on rename.
type Review struct {
	ID        string  `json:"id" bson:"id"`
	UserID    string  `json:"userId" bson:"userId"`
	UserName  string  `json:"userName" bson:"userName"`
	Rating    int     `json:"rating" bson:"rating"`
	Comment   *string `json:"comment" bson:"comment"`
	Date      string  `json:"date" bson:"date"`
	Reply     *string `json:"reply" bson:"reply"`
	ReplyDate *string `json:"replyDate" bson:"replyDate"`
}

// Vendor is a business listing. It shares its ID with the VENDOR user that owns it.
//
// Rating and ReviewCount are derived from Reviews and must never be edited on their own.
// Distance is recomputed from the viewer location and never persisted.
type Vendor struct {
	ID            string     `json:"id" bson:"_id"`
	Name          string     `json:"name" bson:"name"`
	Document      string     `json:"document" bson:"document"`
	Phone         string     `json:"phone" bson:"phone"`
	Address       string     `json:"address" bson:"address"`
	Latitude      *float64   `json:"latitude" bson:"latitude"`
	Longitude     *float64   `json:"longitude" bson:"longitude"`
	Distance      *float64   `json:"distance" bson:"-"`
	Categories    []string   `json:"categories" bson:"categories"`
	Description   string     `json:"description" bson:"description"`
	Website       *string    `json:"website" bson:"website"`
	PhotoURL      *string    `json:"photoUrl" bson:"photoUrl"`
	Rating        float64    `json:"rating" bson:"rating"`
	ReviewCount   int        `json:"reviewCount" bson:"reviewCount"`
	Reviews       []Review   `json:"reviews" bson:"reviews"`
	Visibility    Visibility `json:"visibility" bson:"visibility"`
	Subtype       Subtype    `json:"subtype" bson:"subtype"`
	FeaturedUntil int64      `json:"featuredUntil" bson:"featuredUntil"`
}

// PrimaryCategory returns the first category or "".
func (v *Vendor) PrimaryCategory() string {
	if len(v.Categories) == 0 {
		return ""
	}
	return v.Categories[0]
}

// IsFeatured reports whether the promotion is still running at now.
func (v *Vendor) IsFeatured(now time.Time) bool {
	return v.FeaturedUntil > now.UnixMilli()
}

// Coordinates returns the vendor location when both coordinates are known.
func (v *Vendor) Coordinates() (Location, bool) {
	if v.Latitude == nil || v.Longitude == nil {
		return Location{}, false
	}
	return Location{Lat: *v.Latitude, Lng: *v.Longitude}, true
}

// Clone returns a deep copy so reducers can modify it freely.
func (v Vendor) Clone() Vendor {
	if v.Categories != nil {
		v.Categories = append([]string(nil), v.Categories...)
	}
	if v.Reviews != nil {
		v.Reviews = append([]Review(nil), v.Reviews...)
	}
	return v
}

// Public applies the visibility flags, blanking what the owner chose to hide.
func (v Vendor) Public() Vendor {
	if !v.Visibility.ShowPhone {
		v.Phone = ""
	}
	if !v.Visibility.ShowAddress {
		v.Address = ""
	}
	if !v.Visibility.ShowWebsite {
		v.Website = nil
	}
	return v
}
