package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/asaskevich/EventBus"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/hh-hire/internal/events"
	log "github.com/sirupsen/logrus"
)

type Triggers struct {
	Refusals refusalSender
	Syncs    syncRunner
}

// Bot reports new issues and failed refusals to the recruiters' chat and accepts
// commands from that chat only.
type Bot struct {
	client   *botApi.BotAPI
	api      apiInterface
	chatID   int64
	refusals refusalSender
	syncs    syncRunner
}

func NewBot(token string, chatID int64, bus EventBus.Bus, triggers Triggers) (*Bot, error) {

	client, err := botApi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	log.Infof("Authorized on account %s", client.Self.UserName)

	err = botApi.SetLogger(log.StandardLogger())
	if err != nil {
		return nil, err
	}

	createdBot, err := newBot(client, chatID, bus, triggers)
	if err != nil {
		return nil, err
	}
	createdBot.client = client
	return createdBot, nil
}

func newBot(api apiInterface, chatID int64, bus EventBus.Bus, triggers Triggers) (*Bot, error) {

	if bus == nil {
		return nil, errors.New("bus is nil")
	}

	if triggers.Refusals == nil {
		return nil, errors.New("refusal sender is nil")
	}

	if triggers.Syncs == nil {
		return nil, errors.New("sync runner is nil")
	}

	createdBot := &Bot{api: api, chatID: chatID, refusals: triggers.Refusals, syncs: triggers.Syncs}

	if err := bus.SubscribeAsync(events.IssueCreatedTopic, createdBot.onIssueCreated, false); err != nil {
		return nil, err
	}
	if err := bus.SubscribeAsync(events.RefusalProcessedTopic, createdBot.onRefusalProcessed, false); err != nil {
		return nil, err
	}
	return createdBot, nil
}

func (b *Bot) Run(ctx context.Context) {

	updateConfig := botApi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.client.GetUpdatesChan(updateConfig)

	for update := range updates {

		if update.Message == nil {
			continue
		}

		go b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) Stop() {
	if b.client != nil {
		b.client.StopReceivingUpdates()
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *botApi.Message) {

	if message.Chat == nil || message.Chat.ID != b.chatID {
		log.Warnf("ignoring message from unknown chat")
		return
	}

	cmd := message.Command()
	if cmd == "" {
		return
	}

	response := botApi.NewMessage(message.Chat.ID, b.handleCommand(ctx, cmd, message.CommandArguments()))
	_, _ = sendWithLogError(b.api, response)
}

func (b *Bot) onIssueCreated(event events.IssueCreated) {
	text := fmt.Sprintf("Новый отклик #%d\nВакансия: %s\nКандидат: %s", event.IssueID, event.VacancyName, event.ApplicantName)
	if event.ResumeURL != "" {
		text += "\n" + event.ResumeURL
	}
	_, _ = sendWithLogError(b.api, botApi.NewMessage(b.chatID, text))
}

func (b *Bot) onRefusalProcessed(event events.RefusalProcessed) {
	if event.Sent {
		return
	}
	text := fmt.Sprintf("Не удалось отправить отказ по задаче #%d: %s", event.IssueID, event.Error)
	_, _ = sendWithLogError(b.api, botApi.NewMessage(b.chatID, text))
}
