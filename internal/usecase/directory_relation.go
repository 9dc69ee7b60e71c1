package usecase

import (
	"context"
	"time"

	"skill-swap/internal/codec"
	"skill-swap/internal/domain/contact"
	"skill-swap/internal/relation"
)

func (d *Directory) AddFavorite(ctx context.Context, ownerID, targetID, note string) (bool, error) {
	ok, err := d.favorites.Add(ctx, ownerID, targetID, note)
	return ok, translate(err)
}

func (d *Directory) RemoveFavorite(ctx context.Context, ownerID, targetID string) (bool, error) {
	ok, err := d.favorites.Remove(ctx, ownerID, targetID)
	return ok, translate(err)
}

func (d *Directory) IsFavorite(ctx context.Context, ownerID, targetID string) (bool, error) {
	ok, err := d.favorites.IsMember(ctx, ownerID, targetID)
	return ok, translate(err)
}

// UpdateFavoriteNote reports false when target is not a favorite.
func (d *Directory) UpdateFavoriteNote(ctx context.Context, ownerID, targetID, note string) (bool, error) {
	ok, err := d.favorites.UpdateNote(ctx, ownerID, targetID, note)
	return ok, translate(err)
}

func (d *Directory) FavoriteEntries(ctx context.Context, ownerID string) ([]contact.Favorite, error) {
	entries, err := d.favorites.Entries(ctx, ownerID)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]contact.Favorite, 0, len(entries))
	for _, e := range entries {
		out = append(out, contact.Favorite{
			OwnerID:   ownerID,
			TargetID:  e.TargetID,
			CreatedAt: entryTime(e),
			Note:      e.Note,
		})
	}
	return out, nil
}

func (d *Directory) AddRecentContact(ctx context.Context, ownerID, targetID string) (bool, error) {
	ok, err := d.recents.Add(ctx, ownerID, targetID, "")
	return ok, translate(err)
}

func (d *Directory) RemoveRecentContact(ctx context.Context, ownerID, targetID string) (bool, error) {
	ok, err := d.recents.Remove(ctx, ownerID, targetID)
	return ok, translate(err)
}

func (d *Directory) RecentContactEntries(ctx context.Context, ownerID string) ([]contact.RecentContact, error) {
	entries, err := d.recents.Entries(ctx, ownerID)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]contact.RecentContact, 0, len(entries))
	for _, e := range entries {
		out = append(out, contact.RecentContact{
			OwnerID:         ownerID,
			TargetID:        e.TargetID,
			LastContactedAt: entryTime(e),
		})
	}
	return out, nil
}

func entryTime(e relation.Entry) time.Time {
	return codec.Millis(e.Timestamp)
}
