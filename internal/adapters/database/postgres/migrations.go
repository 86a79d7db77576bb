package postgres

import "github.com/ggorockee/reviewmaps-alerts/internal/domain/entity"

// Migrations is a list of all gorm migrations for the database.
var Migrations = []interface{}{
	&entity.User{},
	&entity.Campaign{},
	&entity.CampaignStatus{},
	&entity.Bookmark{},
	&entity.FCMDevice{},
	&entity.ActivityAlert{},
	&entity.KeywordCampaignAlert{},
}
