package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dictionary/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleText handles all text messages based on state
func (h *Handler) handleText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	// Ignore commands (starting with /)
	if strings.HasPrefix(text, "/") || text == "" {
		return nil
	}

	state := h.GetState(userID)

	if state.State == domain.StateWaitingTranslation {
		return h.saveTranslation(c, state.CurrentWord, text)
	}

	return h.lookupWord(c, text)
}

// saveTranslation adds the user's translation to the word being edited
func (h *Handler) saveTranslation(c tele.Context, wordName, translation string) error {
	ctx := context.Background()
	userID := c.Sender().ID

	h.ResetState(userID)

	if err := h.wordService.AddOneTranslation(ctx, wordName, translation); err != nil {
		if errors.Is(err, domain.ErrWordNotFound) {
			return c.Send("Слово уже удалено")
		}
		h.logger.Error("Failed to add translation",
			zap.Error(err),
			zap.String("word", wordName),
			zap.String("translation", translation),
		)
		return c.Send("Не удалось сохранить перевод. Попробуйте ещё раз.")
	}

	h.logger.Info("Translation added",
		zap.Int64("user_id", userID),
		zap.String("word", wordName),
		zap.String("translation", translation),
	)

	word, err := h.wordService.FindByName(ctx, wordName)
	if err != nil || word == nil {
		return c.Send("✅ Сохранено!")
	}
	return c.Send("✅ Сохранено!\n\n"+formatWordCard(word), wordCardMarkup(word))
}

// lookupWord shows a stored word or asks the remote service for it
func (h *Handler) lookupWord(c tele.Context, name string) error {
	ctx := context.Background()
	userID := c.Sender().ID

	word, err := h.wordService.FindByName(ctx, name)
	if err != nil {
		h.logger.Error("Failed to find word", zap.Error(err), zap.String("word", name))
		return c.Send("Произошла ошибка. Попробуйте позже.")
	}
	if word != nil {
		return c.Send(formatWordCard(word), wordCardMarkup(word))
	}

	dto, err := h.fetcher.Fetch(ctx, name)
	if err != nil {
		h.logger.Error("Failed to fetch word from remote service", zap.Error(err), zap.String("word", name))
		return c.Send("Сервер словаря ответил ошибкой. Попробуйте позже.")
	}
	if dto == nil {
		return c.Send(fmt.Sprintf("Слово «%s» не найдено", name))
	}

	h.SetState(userID, &domain.StateData{State: domain.StateIdle, Pending: dto})

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnSave, btnCancel))
	return c.Send(formatFetched(dto), markup)
}

// handleSaveFetched stores the word last fetched from the remote service
func (h *Handler) handleSaveFetched(c tele.Context) error {
	ctx := context.Background()
	userID := c.Sender().ID

	pending := h.TakePending(userID)
	if pending == nil {
		return c.Respond(&tele.CallbackResponse{Text: "Нечего сохранять"})
	}

	added, err := h.fetcher.SaveIfRequested(ctx, pending, true)
	if err != nil {
		h.logger.Error("Failed to save fetched word", zap.Error(err), zap.String("word", pending.Name))
		return c.Respond(&tele.CallbackResponse{Text: "Не удалось сохранить слово"})
	}
	if !added {
		return c.Respond(&tele.CallbackResponse{Text: "Это слово уже есть в словаре", ShowAlert: true})
	}

	word, err := h.wordService.FindByName(ctx, pending.Name)
	if err != nil || word == nil {
		return c.Respond(&tele.CallbackResponse{Text: "Сохранено"})
	}
	return h.showWord(c, word)
}

// handleWordList shows the names of all stored words
func (h *Handler) handleWordList(c tele.Context) error {
	names, err := h.wordService.ListNames(context.Background())
	if err != nil {
		h.logger.Error("Failed to list words", zap.Error(err))
		return c.Send("Ошибка при загрузке данных")
	}

	if len(names) == 0 {
		text := "У тебя пока нет сохранённых слов"
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
		}
		return c.Send(text)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📚 Слова (%d):\n\n", len(names))
	for i, name := range names {
		fmt.Fprintf(&b, "%d. %s\n", i+1, name)
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnBack))

	if c.Callback() != nil {
		if err := c.Edit(b.String(), markup); err != nil {
			if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
				return nil
			}
			return c.Send(b.String(), markup)
		}
		return c.Respond()
	}
	return c.Send(b.String(), markup)
}

// formatWordCard renders a stored word with its progress and translations
func formatWordCard(word *domain.Word) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📖 %s\nПрогресс: %d\n", word.Name, word.Progress)
	if len(word.Translations) == 0 {
		b.WriteString("\nПереводов пока нет")
		return b.String()
	}
	b.WriteString("\nПереводы:\n")
	for i, name := range word.TranslationNames() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, name)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// formatFetched renders a word found on the remote service
func formatFetched(dto *domain.WordDTO) string {
	text := fmt.Sprintf("🌐 Найдено на сервере: %s\n", dto.Name)
	if len(dto.Translations) > 0 {
		text += "\n" + strings.Join(dto.Translations, ", ") + "\n"
	}
	return text + "\nСохранить в словарь?"
}

// wordCardMarkup returns the buttons shown under a word card
func wordCardMarkup(word *domain.Word) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{
		markup.Row(
			markup.Data("✅ Знаю", fmt.Sprintf("%s%d", prefixKnow, word.ID)),
			markup.Data("❌ Не помню", fmt.Sprintf("%s%d", prefixForgot, word.ID)),
		),
		markup.Row(
			markup.Data("➕ Перевод", fmt.Sprintf("%s%d", prefixAddTranslation, word.ID)),
			markup.Data("🗑 Удалить", fmt.Sprintf("%s%d", prefixDelete, word.ID)),
		),
	}
	for i, t := range word.Translations {
		btn := markup.Data("✖ "+t.Name, fmt.Sprintf("%s%d_%d", prefixDeleteTranslation, word.ID, i))
		rows = append(rows, markup.Row(btn))
	}
	rows = append(rows, markup.Row(btnBack))

	markup.Inline(rows...)
	return markup
}
