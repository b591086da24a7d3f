package catalog

import "time"

// Property is a listed home or lot.
type Property struct {
	ID          string    `gorm:"column:id;primaryKey;size:190;not null"`
	Title       string    `gorm:"column:title;size:320;not null"`
	Description string    `gorm:"column:description;type:text;not null;default:''"`
	Bedrooms    int       `gorm:"column:bedrooms;not null;default:0"`
	Bathrooms   int       `gorm:"column:bathrooms;not null;default:0"`
	Area        float64   `gorm:"column:area;not null;default:0"`
	Location    string    `gorm:"column:location;size:320;not null;default:''"`
	City        string    `gorm:"column:city;size:190;not null;default:''"`
	State       string    `gorm:"column:state;size:190;not null;default:''"`
	Price       int64     `gorm:"column:price;not null;default:0"`
	Featured    bool      `gorm:"column:featured;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName exposes the table backing property listings.
func (Property) TableName() string {
	return "properties"
}

// Testimonial is a published customer quote.
type Testimonial struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	Title     string    `gorm:"column:title;size:320;not null;default:''" json:"title"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	Author    string    `gorm:"column:author;size:320;not null" json:"author"`
	Location  string    `gorm:"column:location;size:320;not null;default:''" json:"location"`
	Rating    int       `gorm:"column:rating;not null;default:0" json:"rating"`
	Featured  bool      `gorm:"column:featured;not null;default:false" json:"featured"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName exposes the table backing testimonials.
func (Testimonial) TableName() string {
	return "testimonials"
}

// FAQ is a published question/answer pair, displayed by ascending order index.
type FAQ struct {
	ID         string    `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	Question   string    `gorm:"column:question;size:512;not null" json:"question"`
	Answer     string    `gorm:"column:answer;type:text;not null" json:"answer"`
	Category   string    `gorm:"column:category;size:190;not null;default:''" json:"category"`
	OrderIndex int       `gorm:"column:order_index;not null;default:0" json:"order_index"`
	Featured   bool      `gorm:"column:featured;not null;default:false" json:"featured"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName exposes the table backing FAQs.
func (FAQ) TableName() string {
	return "faqs"
}
