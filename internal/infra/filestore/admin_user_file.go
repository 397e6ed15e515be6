package filestore

import (
	"context"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type AdminUserRepoFile struct {
	ss  session
	now func() time.Time
}

func NewAdminUserRepoFile(st *Store) *AdminUserRepoFile {
	return &AdminUserRepoFile{ss: session{st: st}, now: time.Now}
}

func (r *AdminUserRepoFile) FindByEmail(ctx context.Context, email string) (model.AdminUser, error) {
	var found model.AdminUser
	err := r.ss.run(func() error {
		var users []model.AdminUser
		if _, err := r.ss.st.readJSON(r.ss.st.adminsPath(), &users); err != nil {
			return err
		}
		for _, u := range users {
			if u.Email == email {
				found = u
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return found, err
}

func (r *AdminUserRepoFile) Upsert(ctx context.Context, admin model.AdminUser) (model.AdminUser, error) {
	err := r.ss.run(func() error {
		var users []model.AdminUser
		if _, err := r.ss.st.readJSON(r.ss.st.adminsPath(), &users); err != nil {
			return err
		}
		for i := range users {
			if users[i].Email == admin.Email {
				users[i].Name = admin.Name
				users[i].PasswordHash = admin.PasswordHash
				admin = users[i]
				return r.ss.st.writeJSON(r.ss.st.adminsPath(), users)
			}
		}
		var maxID int64
		for _, u := range users {
			if u.ID > maxID {
				maxID = u.ID
			}
		}
		admin.ID = maxID + 1
		admin.CreatedAt = r.now()
		users = append(users, admin)
		return r.ss.st.writeJSON(r.ss.st.adminsPath(), users)
	})
	if err != nil {
		return model.AdminUser{}, err
	}
	return admin, nil
}
