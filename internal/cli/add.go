package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/keepsakeapp/keepsake/internal/models"
)

// addExperience interactively collects a new experience and saves it as
// pending. Photos are copied into the blob manager first so the record only
// references filenames.
func (a *App) addExperience(ctx context.Context) {
	title, err := GetSimpleText(a.reader, "Title", a.out)
	if err != nil || title == "" {
		fmt.Fprintln(a.out, "Title is required")
		return
	}

	description, err := GetMultiline(a.reader, "Description", a.out)
	if err != nil {
		return
	}

	experiencedAt, err := GetDateTime(a.reader, "When did this happen? YYYY-MM-DD HH:MM (empty for now)", a.out)
	if err != nil {
		return
	}

	e := &models.Experience{Title: title, Description: description, ExperiencedAt: experiencedAt}

	if place, _ := GetSimpleText(a.reader, "Place (optional)", a.out); place != "" {
		e.PlaceName = &place
	}
	if area, _ := GetSimpleText(a.reader, "Area (optional)", a.out); area != "" {
		e.Area = &area
	}
	e.Rating, _ = GetOptionalInt(a.reader, "Rating 1-10 (optional)", 1, 10, a.out)
	if emotion, _ := GetSimpleText(a.reader, "Emotion (optional)", a.out); emotion != "" {
		e.Emotion = &emotion
		e.EmotionIntensity, _ = GetOptionalInt(a.reader, "Emotion intensity 1-10 (optional)", 1, 10, a.out)
	}
	if mood, _ := GetSimpleText(a.reader, "Mood (optional)", a.out); mood != "" {
		e.Mood = &mood
	}
	if importance, _ := GetSimpleText(a.reader, "Importance (optional)", a.out); importance != "" {
		e.Importance = &importance
	}
	if moment, _ := GetSimpleText(a.reader, "Most memorable moment (optional)", a.out); moment != "" {
		e.MemorableMoment = &moment
	}

	for {
		path, err := GetSimpleText(a.reader, "Photo path (empty to finish)", a.out)
		if err != nil || path == "" {
			break
		}
		photo, err := a.importPhoto(path)
		if err != nil {
			fmt.Fprintln(a.out, "Cannot read photo:", err)
			continue
		}
		if caption, _ := GetSimpleText(a.reader, "Caption (optional)", a.out); caption != "" {
			photo.Caption = caption
		}
		e.Photos = append(e.Photos, photo)
	}

	if err := a.store.SaveExperience(ctx, e); err != nil {
		a.log.Error(ctx, "failed to save experience", "error", err)
		fmt.Fprintln(a.out, "Error saving experience:", err)
		return
	}
	fmt.Fprintf(a.out, "Saved experience %s (pending sync)\n", e.ID)
}

// importPhoto copies the file at path into the blob manager under a fresh
// name and returns the photo reference.
func (a *App) importPhoto(path string) (models.Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Photo{}, err
	}
	name := uuid.NewString() + strings.ToLower(filepath.Ext(path))
	if err := a.blobs.Save(name, data); err != nil {
		return models.Photo{}, err
	}
	return models.Photo{Filename: name}, nil
}

func (a *App) addEmotion(ctx context.Context) {
	emotion, err := GetSimpleText(a.reader, "Emotion", a.out)
	if err != nil || emotion == "" {
		fmt.Fprintln(a.out, "Emotion is required")
		return
	}
	intensity, err := GetOptionalInt(a.reader, "Intensity 1-10", 1, 10, a.out)
	if err != nil || intensity == nil {
		fmt.Fprintln(a.out, "Intensity is required")
		return
	}

	c := &models.EmotionCapture{Emotion: emotion, Intensity: *intensity}
	if situation, _ := GetSimpleText(a.reader, "Context (optional)", a.out); situation != "" {
		c.Context = &situation
	}

	if err := a.store.SaveEmotion(ctx, c); err != nil {
		a.log.Error(ctx, "failed to save emotion capture", "error", err)
		fmt.Fprintln(a.out, "Error saving emotion:", err)
		return
	}
	fmt.Fprintln(a.out, "Captured", emotion)
}

func (a *App) say(ctx context.Context, args []string) {
	a.saveMessage(ctx, models.SpeakerSelf, args)
}

func (a *App) reply(ctx context.Context, args []string) {
	a.saveMessage(ctx, models.SpeakerAssistant, args)
}

func (a *App) saveMessage(ctx context.Context, speaker models.Speaker, args []string) {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		var err error
		text, err = GetSimpleText(a.reader, "Message", a.out)
		if err != nil || text == "" {
			fmt.Fprintln(a.out, "Message text is required")
			return
		}
	}

	m := &models.ChatMessage{Speaker: speaker, Text: text}
	if err := a.store.SaveMessage(ctx, m); err != nil {
		a.log.Error(ctx, "failed to save message", "error", err)
		fmt.Fprintln(a.out, "Error saving message:", err)
		return
	}
	fmt.Fprintf(a.out, "[%s] %s\n", speaker, text)
}
