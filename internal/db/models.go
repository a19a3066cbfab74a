package db

import "time"

// Event maps crime_events. One row per distinct source link.
type Event struct {
	EventID     int64     `gorm:"column:event_id;primaryKey;autoIncrement"`
	Link        string    `gorm:"column:link;type:text;not null;unique"`
	Title       string    `gorm:"column:title;type:text;not null"`
	PublishedAt time.Time `gorm:"column:published_at;type:timestamptz;not null"`
	Lang        string    `gorm:"column:lang;type:text;not null"`
	Score       float64   `gorm:"column:score;type:double precision;not null"`
	Lat         float64   `gorm:"column:lat;type:double precision;not null"`
	Lon         float64   `gorm:"column:lon;type:double precision;not null"`
	Place       string    `gorm:"column:place;type:text;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (Event) TableName() string { return "crime_events" }

func autoMigrateModels() []any {
	return []any{
		&Event{},
	}
}
