package importer_test

import (
	"github.com/google/uuid"

	"github.com/tourdesk/tourdesk/internal/domain"
)

func entity(kind domain.Kind, name string) domain.MasterEntity {
	return domain.MasterEntity{ID: uuid.New(), Kind: kind, Name: name, Status: domain.StatusActive}
}

func nationality(name, code string) domain.MasterEntity {
	e := entity(domain.KindNationality, name)
	e.Code = code
	return e
}
