package tracker

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"gitlab.com/yelinaung/finance-tracker/internal/logger"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
	"gitlab.com/yelinaung/finance-tracker/internal/repository"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// TagInput holds the editable fields of a tag.
type TagInput struct {
	Name  string
	Color string
}

// normalize validates the input against the user's other tags.
func (in TagInput) normalize(d *repository.UserData, selfID string) (TagInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, fmt.Errorf("%w: tag name", ErrMissingField)
	}
	if len([]rune(in.Name)) > models.MaxTagNameLength {
		return in, fmt.Errorf("%w: tag name longer than %d characters", ErrInvalidInput, models.MaxTagNameLength)
	}
	if i := d.TagByName(in.Name); i >= 0 && d.Tags[i].ID != selfID {
		return in, fmt.Errorf("%w: %s", ErrDuplicateTag, in.Name)
	}
	in.Color = strings.TrimSpace(in.Color)
	if in.Color == "" {
		in.Color = models.TagColors[0]
	}
	if !colorPattern.MatchString(in.Color) {
		return in, fmt.Errorf("%w: color %q", ErrInvalidInput, in.Color)
	}
	return in, nil
}

// AddTag creates a tag with a unique name.
func (s *Service) AddTag(ctx context.Context, userID string, in TagInput) (tag models.Tag, err error) {
	ctx, span, began := s.start(ctx, "AddTag", userID)
	defer func() { s.finish(span, "add_tag", userID, began, err) }()

	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		norm, err := in.normalize(d, "")
		if err != nil {
			return err
		}
		tag = models.Tag{ID: repository.NewID("tag"), Name: norm.Name, Color: norm.Color}
		d.Tags = append(d.Tags, tag)
		return nil
	})
	if err != nil {
		return models.Tag{}, err
	}

	logger.Log.Info().Str("user_hash", logger.HashUserID(userID)).Str("tag_id", tag.ID).Msg("Tag added")
	return tag, nil
}

// UpdateTag renames or recolors a tag.
func (s *Service) UpdateTag(ctx context.Context, userID, tagID string, in TagInput) (tag models.Tag, err error) {
	ctx, span, began := s.start(ctx, "UpdateTag", userID)
	defer func() { s.finish(span, "update_tag", userID, began, err) }()

	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		i := d.TagIndex(tagID)
		if i < 0 {
			return fmt.Errorf("tag %s: %w", tagID, ErrNotFound)
		}
		norm, err := in.normalize(d, tagID)
		if err != nil {
			return err
		}
		d.Tags[i].Name = norm.Name
		d.Tags[i].Color = norm.Color
		tag = d.Tags[i]
		return nil
	})
	if err != nil {
		return models.Tag{}, err
	}

	logger.Log.Info().Str("user_hash", logger.HashUserID(userID)).Str("tag_id", tagID).Msg("Tag updated")
	return tag, nil
}

// DeleteTag removes a tag and strips it from every transaction. It returns
// how many transactions referenced it.
func (s *Service) DeleteTag(ctx context.Context, userID, tagID string) (affected int, err error) {
	ctx, span, began := s.start(ctx, "DeleteTag", userID)
	defer func() { s.finish(span, "delete_tag", userID, began, err) }()

	err = s.store.Update(ctx, userID, func(d *repository.UserData) error {
		i := d.TagIndex(tagID)
		if i < 0 {
			return fmt.Errorf("tag %s: %w", tagID, ErrNotFound)
		}
		d.Tags = slices.Delete(d.Tags, i, i+1)
		for j := range d.Transactions {
			before := len(d.Transactions[j].Tags)
			d.Transactions[j].Tags = slices.DeleteFunc(d.Transactions[j].Tags, func(id string) bool { return id == tagID })
			if len(d.Transactions[j].Tags) != before {
				affected++
			}
		}
		for j := range d.Recurring {
			d.Recurring[j].Tags = slices.DeleteFunc(d.Recurring[j].Tags, func(id string) bool { return id == tagID })
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Log.Info().
		Str("user_hash", logger.HashUserID(userID)).
		Str("tag_id", tagID).
		Int("transactions", affected).
		Msg("Tag deleted")
	return affected, nil
}

// ListTags returns all tags.
func (s *Service) ListTags(_ context.Context, userID string) ([]models.Tag, error) {
	return s.store.Snapshot(userID).Tags, nil
}
