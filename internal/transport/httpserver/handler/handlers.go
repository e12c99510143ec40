package handler

import (
	billingdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/billing"
	occupancydomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/occupancy"
	residentsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/residents"
	settingsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/settings"
	visitorsdomain "github.com/cg-naveen/sukha-pms-new-sub000/internal/domain/visitors"
	"github.com/cg-naveen/sukha-pms-new-sub000/pkg/logger"
)

type Handlers struct {
	Rooms     *occupancydomain.Service
	Residents *residentsdomain.Service
	Billings  *billingdomain.Service
	Visitors  *visitorsdomain.Service
	Settings  *settingsdomain.Service
	log       logger.Logger
}

func New(rooms *occupancydomain.Service, residents *residentsdomain.Service, billings *billingdomain.Service, visitors *visitorsdomain.Service, settings *settingsdomain.Service, log logger.Logger) *Handlers {
	if log == nil {
		log = logger.Nop()
	}
	return &Handlers{
		Rooms:     rooms,
		Residents: residents,
		Billings:  billings,
		Visitors:  visitors,
		Settings:  settings,
		log:       log,
	}
}
