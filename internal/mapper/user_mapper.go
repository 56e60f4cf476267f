package mapper

import (
	"arogya-chat-be/internal/entity"
	"arogya-chat-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}

	policy := entity.RetentionPolicy(u.HistoryRetention)
	if !policy.IsValid() {
		// Rows written before the column existed, or by hand
		policy = entity.DefaultRetention
	}

	return &entity.User{
		Id:               u.Id,
		Name:             u.Name,
		Email:            u.Email,
		HistoryRetention: policy,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}

	retention := string(u.HistoryRetention)
	if retention == "" {
		retention = string(entity.DefaultRetention)
	}

	return &model.User{
		Id:               u.Id,
		Name:             u.Name,
		Email:            u.Email,
		HistoryRetention: retention,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func (m *UserMapper) ToEntities(models []*model.User) []*entity.User {
	entities := make([]*entity.User, len(models))
	for i, u := range models {
		entities[i] = m.ToEntity(u)
	}
	return entities
}
