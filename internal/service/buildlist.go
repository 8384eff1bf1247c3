package service

import (
	"ModPlanner/internal/model"
	"ModPlanner/internal/repo"
	"context"
	"fmt"
	"strings"
)

// BuildListView — build-лист вместе со связанными деталями.
type BuildListView struct {
	model.BuildList
	Parts []model.BuildListPart `json:"parts"`
}

// BuildListService — минимальные операции над build-листами.
type BuildListService struct {
	lists  repo.BuildListRepository
	linker *ReferenceLinker
}

func NewBuildListService(lists repo.BuildListRepository, linker *ReferenceLinker) *BuildListService {
	return &BuildListService{lists: lists, linker: linker}
}

func (s *BuildListService) Create(ctx context.Context, caller Identity, name string) (*model.BuildList, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	if err := validName(name); err != nil {
		return nil, err
	}
	bl := &model.BuildList{UserID: caller.UserID, Name: strings.TrimSpace(name)}
	if err := s.lists.Create(ctx, bl); err != nil {
		return nil, fmt.Errorf("create build list: %w", err)
	}
	return bl, nil
}

// Get возвращает build-лист владельцу или админу.
func (s *BuildListService) Get(ctx context.Context, caller Identity, id int64) (*BuildListView, error) {
	if !caller.Authenticated() {
		return nil, ErrUnauthorized
	}
	bl, err := s.lists.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get build list %d: %w", id, notFound(err))
	}
	parts, err := s.linker.ListForBuildList(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return &BuildListView{BuildList: *bl, Parts: parts}, nil
}
