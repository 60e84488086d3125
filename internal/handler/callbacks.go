package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"dictionary/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Prefixes of dynamic callback data
const (
	prefixKnow              = "know_"
	prefixForgot            = "forgot_"
	prefixAddTranslation    = "addtr_"
	prefixDelete            = "delete_"
	prefixDeleteTranslation = "deltr_"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// parseWordID extracts the word id from data of the form <prefix><id>
func parseWordID(data, prefix string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(data, prefix))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid word id in callback %q", data)
	}
	return id, nil
}

// parseTranslationRef extracts word id and translation index from deltr_<id>_<index>
func parseTranslationRef(data string) (int, int, error) {
	parts := strings.Split(strings.TrimPrefix(data, prefixDeleteTranslation), "_")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid translation reference %q", data)
	}
	wordID, err := strconv.Atoi(parts[0])
	if err != nil || wordID <= 0 {
		return 0, 0, fmt.Errorf("invalid word id in %q", data)
	}
	index, err := strconv.Atoi(parts[1])
	if err != nil || index < 0 {
		return 0, 0, fmt.Errorf("invalid translation index in %q", data)
	}
	return wordID, index, nil
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
		)
		c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
	)
	// Always acknowledge callback before sending new message
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// handleCallback handles ALL callback queries
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	// Clean data from all non-printable characters
	data := cleanCallbackData(callback.Data)
	h.logger.Debug("handleCallback: Processing callback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)

	switch callback.Unique {
	case "words":
		return h.handleWordList(c)
	case "save":
		return h.handleSaveFetched(c)
	case "cancel":
		return h.handleCancel(c)
	case "back":
		return h.handleStart(c)
	}

	// Handle by Data prefix (dynamic buttons)
	switch {
	case strings.HasPrefix(data, prefixKnow):
		return h.handleProgress(c, data, prefixKnow)
	case strings.HasPrefix(data, prefixForgot):
		return h.handleProgress(c, data, prefixForgot)
	case strings.HasPrefix(data, prefixAddTranslation):
		return h.handleAddTranslation(c, data)
	case strings.HasPrefix(data, prefixDeleteTranslation):
		return h.handleDeleteTranslation(c, data)
	case strings.HasPrefix(data, prefixDelete):
		return h.handleDeleteWord(c, data)
	}

	h.logger.Warn("Unhandled callback in handleCallback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}

// handleCancel cancels current operation and resets state
func (h *Handler) handleCancel(c tele.Context) error {
	h.ResetState(c.Sender().ID)
	return h.handleStart(c)
}

// handleProgress moves a word's progress up for "know" and down for "forgot"
func (h *Handler) handleProgress(c tele.Context, data, prefix string) error {
	ctx := context.Background()

	word, err := h.wordFromCallback(c, data, prefix)
	if err != nil || word == nil {
		return err
	}

	if prefix == prefixKnow {
		err = h.wordService.IncreaseProgress(ctx, word)
	} else {
		err = h.wordService.DecreaseProgress(ctx, word)
	}
	if err != nil {
		h.logger.Error("Failed to change progress", zap.Error(err), zap.Int("word_id", word.ID))
		return c.Respond(&tele.CallbackResponse{Text: "Ошибка при сохранении"})
	}

	return h.showWord(c, word)
}

// handleAddTranslation waits for the user to type a new translation
func (h *Handler) handleAddTranslation(c tele.Context, data string) error {
	word, err := h.wordFromCallback(c, data, prefixAddTranslation)
	if err != nil || word == nil {
		return err
	}

	h.SetState(c.Sender().ID, &domain.StateData{
		State:       domain.StateWaitingTranslation,
		CurrentWord: word.Name,
	})

	cancelMarkup := &tele.ReplyMarkup{}
	cancelMarkup.Inline(cancelMarkup.Row(btnCancel))

	if err := c.Respond(); err != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(err))
	}
	return c.Send(fmt.Sprintf("Жду перевод для «%s»", word.Name), cancelMarkup)
}

// handleDeleteWord removes a word with all its translations
func (h *Handler) handleDeleteWord(c tele.Context, data string) error {
	id, err := parseWordID(data, prefixDelete)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Неверная кнопка"})
	}

	if err := h.wordService.DeleteWord(context.Background(), id); err != nil {
		h.logger.Error("Failed to delete word", zap.Error(err), zap.Int("word_id", id))
		return c.Respond(&tele.CallbackResponse{Text: "Не удалось удалить слово"})
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnBack))

	if err := c.Edit("🗑 Слово удалено", markup); err != nil {
		if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
			return nil
		}
		return c.Send("🗑 Слово удалено", markup)
	}
	return c.Respond()
}

// handleDeleteTranslation removes one translation of a word
func (h *Handler) handleDeleteTranslation(c tele.Context, data string) error {
	ctx := context.Background()

	wordID, index, err := parseTranslationRef(data)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "Неверная кнопка"})
	}

	word, err := h.wordService.FindByID(ctx, wordID)
	if err != nil {
		h.logger.Error("Failed to find word", zap.Error(err), zap.Int("word_id", wordID))
		return c.Respond(&tele.CallbackResponse{Text: "Ошибка при загрузке"})
	}
	if word == nil || index >= len(word.Translations) {
		return c.Respond(&tele.CallbackResponse{Text: "Перевод уже удалён"})
	}

	name := word.Translations[index].Name
	err = h.wordService.DeleteOneTranslation(ctx, wordID, name)
	if errors.Is(err, domain.ErrWordNotFound) || errors.Is(err, domain.ErrTranslationNotFound) {
		return c.Respond(&tele.CallbackResponse{Text: "Перевод уже удалён"})
	}
	if err != nil {
		h.logger.Error("Failed to delete translation",
			zap.Error(err),
			zap.Int("word_id", wordID),
			zap.String("translation", name),
		)
		return c.Respond(&tele.CallbackResponse{Text: "Не удалось удалить перевод"})
	}

	word, err = h.wordService.FindByID(ctx, wordID)
	if err != nil || word == nil {
		return c.Respond()
	}
	return h.showWord(c, word)
}

// wordFromCallback loads the word referenced by callback data. A nil word
// with nil error means the callback has already been answered.
func (h *Handler) wordFromCallback(c tele.Context, data, prefix string) (*domain.Word, error) {
	id, err := parseWordID(data, prefix)
	if err != nil {
		return nil, c.Respond(&tele.CallbackResponse{Text: "Неверная кнопка"})
	}

	word, err := h.wordService.FindByID(context.Background(), id)
	if err != nil {
		h.logger.Error("Failed to find word", zap.Error(err), zap.Int("word_id", id))
		return nil, c.Respond(&tele.CallbackResponse{Text: "Ошибка при загрузке"})
	}
	if word == nil {
		return nil, c.Respond(&tele.CallbackResponse{Text: "Слово не найдено", ShowAlert: true})
	}
	return word, nil
}

// showWord replaces the callback message with the word card
func (h *Handler) showWord(c tele.Context, word *domain.Word) error {
	text := formatWordCard(word)
	markup := wordCardMarkup(word)

	if err := c.Edit(text, markup); err != nil {
		if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
			return nil
		}
		return c.Send(text, markup)
	}
	return c.Respond()
}
