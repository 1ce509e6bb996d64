package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/hh-hire/internal/clients/hh"
	"github.com/maxaizer/hh-hire/internal/logger"
	log "github.com/sirupsen/logrus"
)

const (
	startCommandName  = "start"
	refuseCommandName = "refuse"
	syncCommandName   = "sync"
)

type apiInterface interface {
	Send(chattable tgbotapi.Chattable) (tgbotapi.Message, error)
}

type refusalSender interface {
	SendRefusal(ctx context.Context, issueID int) error
}

type syncRunner interface {
	Trigger(scope hh.VacancyScope) bool
}

func sendWithLogError(api apiInterface, chattable tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, err := api.Send(chattable)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).
			Errorf("error occured while sending message: %v", err)
	}
	return msg, err
}

func (b *Bot) handleCommand(ctx context.Context, command, args string) string {
	switch command {
	case startCommandName:
		return "Команды:\n/refuse <id задачи> - отправить отказ кандидату\n/sync <active|archived> - синхронизировать вакансии"
	case refuseCommandName:
		return b.refuse(ctx, args)
	case syncCommandName:
		return b.sync(args)
	default:
		return "Неизвестная команда!"
	}
}

func (b *Bot) refuse(ctx context.Context, args string) string {
	issueID, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || issueID <= 0 {
		return "Укажите номер задачи: /refuse 42"
	}

	if err = b.refusals.SendRefusal(ctx, issueID); err != nil {
		log.Errorf("failed to send refusal for issue %d from telegram: %v", issueID, err)
		return "Внутренняя ошибка!"
	}
	return fmt.Sprintf("Отказ по задаче #%d поставлен в обработку", issueID)
}

func (b *Bot) sync(args string) string {
	scope, err := hh.ParseVacancyScope(strings.TrimSpace(args))
	if err != nil {
		return "Укажите тип вакансий: /sync active или /sync archived"
	}

	if !b.syncs.Trigger(scope) {
		return "Синхронизация уже выполняется, попробуйте позже"
	}
	return fmt.Sprintf("Синхронизация %s вакансий запущена", scope)
}
