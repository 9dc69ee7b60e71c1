package usecase

import (
	"context"
	"errors"
	"io"
	"strings"

	"skill-swap/internal/domain/skill"
	"skill-swap/internal/domain/user"
	"skill-swap/internal/infrastructure/objectstore"
)

func (d *Directory) SaveUser(ctx context.Context, u user.User) (user.User, error) {
	saved, err := d.users.Save(ctx, u)
	if err != nil {
		return user.User{}, translate(err)
	}
	return saved, nil
}

func (d *Directory) UpdateProfile(ctx context.Context, userID string, p user.Profile) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrInvalidInput
	}
	if err := d.requireUser(ctx, userID); err != nil {
		return err
	}
	return translate(d.users.UpdateProfile(ctx, userID, p))
}

// UpdateUserField writes one field addressed with dots, such as
// "profile.bio".
func (d *Directory) UpdateUserField(ctx context.Context, userID, field string, value any) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrInvalidInput
	}
	if err := d.requireUser(ctx, userID); err != nil {
		return err
	}
	return translate(d.users.UpdateField(ctx, userID, field, value))
}

// AddSkillToTeach writes the user's own entry first; that write decides the
// outcome. The global skill record is then created or refreshed and the user
// is added to its teachers. Failures on the global record are logged only.
func (d *Directory) AddSkillToTeach(ctx context.Context, userID string, in TeachSkillInput) (string, error) {
	userID = strings.TrimSpace(userID)
	in.Title = strings.TrimSpace(in.Title)
	if userID == "" || in.Title == "" {
		return "", ErrInvalidInput
	}
	if err := d.requireUser(ctx, userID); err != nil {
		return "", err
	}

	skillID := d.skillID(in.SkillID)
	entry := user.TeachSkill{
		Title:       in.Title,
		Level:       user.ClampLevel(in.Level),
		Category:    strings.TrimSpace(in.Category),
		Description: in.Description,
	}
	if err := d.users.PutTeachSkill(ctx, userID, skillID, entry); err != nil {
		return "", translate(err)
	}

	if err := d.syncGlobalSkill(ctx, userID, skillID, entry); err != nil {
		d.logf("[Directory] global skill update failed skill=%s user=%s err=%v", skillID, userID, err)
	}
	return skillID, nil
}

func (d *Directory) syncGlobalSkill(ctx context.Context, userID, skillID string, entry user.TeachSkill) error {
	_, err := d.skills.Get(ctx, skillID)
	switch {
	case errors.Is(err, skill.ErrNotFound):
		_, err = d.skills.Save(ctx, skill.Skill{
			ID:            skillID,
			Title:         entry.Title,
			Category:      entry.Category,
			Description:   entry.Description,
			Level:         entry.Level,
			UsersTeaching: []string{userID},
		})
		return err
	case err != nil:
		return err
	}
	if err := d.skills.UpdateSummary(ctx, skillID, entry.Title, entry.Category); err != nil {
		return err
	}
	return d.skills.AddTeacher(ctx, skillID, userID)
}

// RemoveSkillToTeach leaves the global skill in place and only drops the
// user from its teachers.
func (d *Directory) RemoveSkillToTeach(ctx context.Context, userID, skillID string) error {
	userID, skillID = strings.TrimSpace(userID), strings.TrimSpace(skillID)
	if userID == "" || skillID == "" {
		return ErrInvalidInput
	}
	if err := d.users.DeleteTeachSkill(ctx, userID, skillID); err != nil {
		return translate(err)
	}
	if err := d.skills.RemoveTeacher(ctx, skillID, userID); err != nil {
		d.logf("[Directory] remove teacher failed skill=%s user=%s err=%v", skillID, userID, err)
	}
	return nil
}

func (d *Directory) AddSkillToLearn(ctx context.Context, userID string, in LearnSkillInput) (string, error) {
	userID = strings.TrimSpace(userID)
	in.Title = strings.TrimSpace(in.Title)
	if userID == "" || in.Title == "" {
		return "", ErrInvalidInput
	}
	if err := d.requireUser(ctx, userID); err != nil {
		return "", err
	}

	skillID := d.skillID(in.SkillID)
	entry := user.LearnSkill{Title: in.Title, Priority: user.NormalizePriority(in.Priority)}
	if err := d.users.PutLearnSkill(ctx, userID, skillID, entry); err != nil {
		return "", translate(err)
	}
	return skillID, nil
}

func (d *Directory) RemoveSkillToLearn(ctx context.Context, userID, skillID string) error {
	userID, skillID = strings.TrimSpace(userID), strings.TrimSpace(skillID)
	if userID == "" || skillID == "" {
		return ErrInvalidInput
	}
	return translate(d.users.DeleteLearnSkill(ctx, userID, skillID))
}

// UploadProfileImage stores the image and points profile/photoUrl at its
// object key.
func (d *Directory) UploadProfileImage(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || r == nil {
		return "", ErrInvalidInput
	}
	if d.objects == nil {
		return "", translate(objectstore.ErrNotConfigured)
	}
	if err := d.requireUser(ctx, userID); err != nil {
		return "", err
	}

	key := objectstore.ProfileImageKey(userID)
	if err := d.objects.Put(ctx, key, r, size, contentType); err != nil {
		return "", translate(err)
	}
	if err := d.users.UpdateField(ctx, userID, "profile.photoUrl", key); err != nil {
		return "", translate(err)
	}
	if d.cache != nil {
		if err := d.cache.Delete(ctx, profileImageCacheKey(userID)); err != nil {
			d.logf("[Directory] profile image cache invalidation failed user=%s err=%v", userID, err)
		}
	}
	return key, nil
}

// ProfileImageURL returns a fetchable URL for the user's photo. Absolute
// URLs are returned as stored; object keys are presigned and the result is
// cached for half the presign lifetime.
func (d *Directory) ProfileImageURL(ctx context.Context, userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrInvalidInput
	}

	cacheKey := profileImageCacheKey(userID)
	if d.cache != nil {
		var cached string
		if ok, err := d.cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok && cached != "" {
			return cached, nil
		}
	}

	u, err := d.users.Get(ctx, userID)
	if err != nil {
		return "", translate(err)
	}
	photo := strings.TrimSpace(u.Profile.PhotoURL)
	if photo == "" {
		return "", ErrNotFound
	}
	if strings.HasPrefix(photo, "http://") || strings.HasPrefix(photo, "https://") {
		return photo, nil
	}
	if d.objects == nil {
		return "", translate(objectstore.ErrNotConfigured)
	}

	url, err := d.objects.PresignGet(ctx, photo, d.presignExpiry)
	if err != nil {
		return "", translate(err)
	}
	if d.cache != nil {
		if err := d.cache.SetJSON(ctx, cacheKey, url, d.presignExpiry/2); err != nil {
			d.logf("[Directory] profile image cache write failed user=%s err=%v", userID, err)
		}
	}
	return url, nil
}

func profileImageCacheKey(userID string) string {
	return "profile_image_" + userID
}

func (d *Directory) requireUser(ctx context.Context, userID string) error {
	if _, err := d.users.Get(ctx, userID); err != nil {
		return translate(err)
	}
	return nil
}

func (d *Directory) skillID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" && d.newID != nil {
		id = d.newID()
	}
	return id
}
