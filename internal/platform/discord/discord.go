// Package discord connects the onboarding workflow to a Discord guild.
package discord

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"onboarder/internal/domain"
	"onboarder/internal/platform"

	"github.com/bwmarrin/discordgo"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

const intents = discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsDirectMessageReactions |
	discordgo.IntentsMessageContent

// restClient is the part of *discordgo.Session the adapter calls
type restClient interface {
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// Config holds the connection settings
type Config struct {
	Token          string
	GuildID        string
	AttachmentsDir string
}

// Adapter translates gateway events into domain events and implements
// platform.Messenger and platform.RoleManager on top of the REST API
type Adapter struct {
	session        *discordgo.Session
	rest           restClient
	guildID        string
	attachmentsDir string
	selfID         string

	channels *xsync.MapOf[string, string] // user id -> DM channel id
	names    *xsync.MapOf[string, string] // user id -> username
	logger   *zap.Logger
}

var (
	_ platform.Messenger   = (*Adapter)(nil)
	_ platform.RoleManager = (*Adapter)(nil)
)

// New creates an adapter. Call Bind before Open so no event is missed.
func New(cfg Config, logger *zap.Logger) (*Adapter, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = intents
	// events of one connection are handled in arrival order
	session.SyncEvents = true

	a := newAdapter(session, cfg, logger)
	a.session = session
	return a, nil
}

func newAdapter(rest restClient, cfg Config, logger *zap.Logger) *Adapter {
	return &Adapter{
		rest:           rest,
		guildID:        cfg.GuildID,
		attachmentsDir: cfg.AttachmentsDir,
		channels:       xsync.NewMapOf[string, string](),
		names:          xsync.NewMapOf[string, string](),
		logger:         logger,
	}
}

// Open connects to the gateway and learns the bot's own user id
func (a *Adapter) Open() error {
	if err := a.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	if a.session.State != nil && a.session.State.User != nil {
		a.selfID = a.session.State.User.ID
	} else {
		me, err := a.session.User("@me")
		if err != nil {
			return fmt.Errorf("failed to fetch own user: %w", err)
		}
		a.selfID = me.ID
	}

	a.logger.Info("Connected to Discord",
		zap.String("self_id", a.selfID),
		zap.String("guild_id", a.guildID),
	)
	return nil
}

// Close disconnects from the gateway
func (a *Adapter) Close() error {
	return a.session.Close()
}

// SelfID returns the bot's own user id, known after Open
func (a *Adapter) SelfID() string {
	return a.selfID
}

// Bind forwards every relevant gateway event to sink
func (a *Adapter) Bind(sink func(domain.Event)) {
	a.session.AddHandler(func(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
		if ev, ok := a.memberJoined(m); ok {
			sink(ev)
		}
	})
	a.session.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
		if ev, ok := a.reaction(domain.EventReactionAdded, r.MessageReaction); ok {
			sink(ev)
		}
	})
	a.session.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionRemove) {
		if ev, ok := a.reaction(domain.EventReactionRemoved, r.MessageReaction); ok {
			sink(ev)
		}
	})
	a.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if ev, ok := a.message(m); ok {
			sink(ev)
		}
	})
}

func (a *Adapter) memberJoined(m *discordgo.GuildMemberAdd) (domain.Event, bool) {
	if m.Member == nil || m.User == nil || m.GuildID != a.guildID {
		return domain.Event{}, false
	}
	name := Username(m.User)
	a.names.Store(m.User.ID, name)

	return domain.Event{
		Kind:     domain.EventMemberJoined,
		UserID:   m.User.ID,
		Username: name,
	}, true
}

func (a *Adapter) reaction(kind domain.EventKind, r *discordgo.MessageReaction) (domain.Event, bool) {
	// prompts only live in direct messages
	if r == nil || r.GuildID != "" {
		return domain.Event{}, false
	}

	name, err := a.username(r.UserID)
	if err != nil {
		a.logger.Warn("Failed to resolve username, dropping reaction",
			zap.String("user_id", r.UserID),
			zap.Error(err),
		)
		return domain.Event{}, false
	}
	a.channels.Store(r.UserID, r.ChannelID)

	return domain.Event{
		Kind:     kind,
		UserID:   r.UserID,
		Username: name,
		PromptID: r.MessageID,
		Symbol:   SymbolOf(r.Emoji.Name),
		Emoji:    r.Emoji.Name,
	}, true
}

// message translates direct messages and messages posted in the guild's channels
func (a *Adapter) message(m *discordgo.MessageCreate) (domain.Event, bool) {
	if m.Message == nil || m.Author == nil {
		return domain.Event{}, false
	}
	if m.GuildID != "" && m.GuildID != a.guildID {
		return domain.Event{}, false
	}
	name := Username(m.Author)
	a.names.Store(m.Author.ID, name)
	if m.GuildID == "" {
		a.channels.Store(m.Author.ID, m.ChannelID)
	}

	return domain.Event{
		Kind:     domain.EventMessageReceived,
		UserID:   m.Author.ID,
		Username: name,
		Text:     m.Content,
	}, true
}

func (a *Adapter) username(userID string) (string, error) {
	if name, ok := a.names.Load(userID); ok {
		return name, nil
	}
	u, err := a.rest.User(userID)
	if err != nil {
		return "", err
	}
	name := Username(u)
	a.names.Store(userID, name)
	return name, nil
}

// SendDirectMessage sends msg with its attachments to the user's DM channel
func (a *Adapter) SendDirectMessage(ctx context.Context, userID string, msg platform.OutgoingMessage) (string, error) {
	channelID, err := a.dmChannel(ctx, userID)
	if err != nil {
		return "", err
	}

	send := &discordgo.MessageSend{Content: msg.Text}
	for _, att := range msg.Attachments {
		f, err := os.Open(filepath.Join(a.attachmentsDir, att.Path))
		if err != nil {
			return "", fmt.Errorf("failed to open attachment %s: %w", att.Path, err)
		}
		defer f.Close()

		send.Files = append(send.Files, &discordgo.File{
			Name:        att.Filename,
			ContentType: "application/pdf",
			Reader:      f,
		})
	}

	sent, err := a.rest.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return "", classify(err)
	}
	return sent.ID, nil
}

// AddReaction offers symbol as an option on the prompt promptID
func (a *Adapter) AddReaction(ctx context.Context, userID, promptID string, symbol domain.Symbol) error {
	emoji, ok := Emoji(symbol)
	if !ok {
		return fmt.Errorf("no emoji for symbol %q", symbol)
	}

	channelID, err := a.dmChannel(ctx, userID)
	if err != nil {
		return err
	}

	return classify(a.rest.MessageReactionAdd(channelID, promptID, emoji, discordgo.WithContext(ctx)))
}

func (a *Adapter) dmChannel(ctx context.Context, userID string) (string, error) {
	if id, ok := a.channels.Load(userID); ok {
		return id, nil
	}
	ch, err := a.rest.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return "", classify(err)
	}
	a.channels.Store(userID, ch.ID)
	return ch.ID, nil
}

// GrantRoles adds each role to the member. Other roles of the member are left alone.
func (a *Adapter) GrantRoles(ctx context.Context, userID string, roles []domain.RoleID) error {
	return eachRole(roles, func(roleID string) error {
		return a.rest.GuildMemberRoleAdd(a.guildID, userID, roleID, discordgo.WithContext(ctx))
	})
}

// RevokeRoles removes each role from the member. Removing a role the member lacks succeeds.
func (a *Adapter) RevokeRoles(ctx context.Context, userID string, roles []domain.RoleID) error {
	return eachRole(roles, func(roleID string) error {
		return a.rest.GuildMemberRoleRemove(a.guildID, userID, roleID, discordgo.WithContext(ctx))
	})
}

// eachRole calls fn once per distinct role and stops at the first failure
func eachRole(roles []domain.RoleID, fn func(roleID string) error) error {
	seen := make(map[domain.RoleID]bool, len(roles))
	for _, r := range roles {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		if err := fn(string(r)); err != nil {
			return classify(err)
		}
	}
	return nil
}

// Username returns name#discriminator, or the plain name for accounts without a discriminator
func Username(u *discordgo.User) string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}
