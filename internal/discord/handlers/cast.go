// Package handlers holds the /cast interaction handlers.
package handlers

import (
	"fmt"
	"maps"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/clients/hub"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/discord/builders"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/discord/core"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
	apperr "github.com/KirkDiggler/farcaster-bot-discord/internal/errors"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/repositories/accounts"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/services/drafts"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/services/formatter"
)

// Modal field holding the draft text
const textField = "text"

// CastHandler serves the /cast command, its buttons and the edit modal
type CastHandler struct {
	drafts         *drafts.Registry
	accounts       accounts.Repository
	resolver       formatter.Resolver
	ids            *core.CustomIDBuilder
	feedbackHandle string
	feedbackFID    uint64
	logger         *zap.Logger
}

// CastHandlerConfig holds configuration for the cast handler
type CastHandlerConfig struct {
	Drafts         *drafts.Registry      // Required
	Accounts       accounts.Repository   // Required
	Resolver       formatter.Resolver    // Required
	IDs            *core.CustomIDBuilder // Required
	FeedbackHandle string
	FeedbackFID    uint64
	Logger         *zap.Logger
}

// NewCastHandler creates a cast handler
func NewCastHandler(cfg *CastHandlerConfig) (*CastHandler, error) {
	if cfg.Drafts == nil {
		return nil, apperr.InvalidArgument("drafts registry is required")
	}
	if cfg.Accounts == nil {
		return nil, apperr.InvalidArgument("accounts repository is required")
	}
	if cfg.Resolver == nil {
		return nil, apperr.InvalidArgument("resolver is required")
	}
	if cfg.IDs == nil {
		return nil, apperr.InvalidArgument("custom ID builder is required")
	}

	h := &CastHandler{
		drafts:         cfg.Drafts,
		accounts:       cfg.Accounts,
		resolver:       cfg.Resolver,
		ids:            cfg.IDs,
		feedbackHandle: cfg.FeedbackHandle,
		feedbackFID:    cfg.FeedbackFID,
		logger:         cfg.Logger,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	return h, nil
}

// HandleNew starts a draft, optionally in a channel or as a reply
func (h *CastHandler) HandleNew(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	in := &drafts.AddDraftInput{
		Text:      ctx.GetStringParam("text"),
		ParentURL: strings.TrimSpace(ctx.GetStringParam("channel")),
	}

	if raw := ctx.GetStringParam("reply_hash"); raw != "" {
		fid := ctx.GetIntParam("reply_fid")
		if fid <= 0 {
			return nil, core.NewValidationError("reply_fid is required when replying to a cast")
		}
		hash, err := formatter.ParseCastHash(raw)
		if err != nil {
			return nil, err
		}
		in.ParentCastID = &entities.CastID{FID: uint64(fid), Hash: hash}
	}

	store := h.drafts.ForOwner(ctx.UserID)
	id, added := store.AddDraft(in)

	content := "📝 New draft started."
	if !added {
		content = "📝 You already have a draft for that, picking it back up."
	}
	return h.showDraft(store, id, content)
}

// HandleList shows every draft of the user
func (h *CastHandler) HandleList(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	store := h.drafts.ForOwner(ctx.UserID)
	return core.Respond(core.NewEmbedResponse(builders.DraftListEmbed(store.Drafts()).Build()))
}

// HandleShow shows one draft with its buttons
func (h *CastHandler) HandleShow(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	store, draft, err := h.draftAt(ctx)
	if err != nil {
		return nil, err
	}
	return h.showDraft(store, draft.ID, "")
}

// HandleEdit replaces the text of a draft
func (h *CastHandler) HandleEdit(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	store, draft, err := h.draftAt(ctx)
	if err != nil {
		return nil, err
	}
	return h.saveText(store, draft, ctx.GetStringParam("text"))
}

// HandleRemove drops a draft by number
func (h *CastHandler) HandleRemove(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	store, draft, err := h.draftAt(ctx)
	if err != nil {
		return nil, err
	}
	if !store.RemoveDraftByID(draft.ID) {
		return nil, apperr.NotFoundf("draft #%d is already gone", ctx.GetIntParam("number"))
	}
	return core.Respond(core.NewEphemeralResponse(fmt.Sprintf("🗑️ Removed draft #%d.", ctx.GetIntParam("number"))))
}

// HandleClear drops every draft of the user
func (h *CastHandler) HandleClear(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	n := h.drafts.ForOwner(ctx.UserID).RemoveAll()
	return core.Respond(core.NewEphemeralResponse(fmt.Sprintf("🗑️ Removed %d draft(s).", n)))
}

// HandleTemplate adds a scripted draft
func (h *CastHandler) HandleTemplate(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	var tpl *drafts.Template
	switch name := ctx.GetStringParam("name"); name {
	case "feedback":
		if h.feedbackHandle == "" {
			return nil, core.NewValidationError("feedback is not set up on this bot")
		}
		tpl = drafts.FeedbackTemplate(h.feedbackHandle, h.feedbackFID)
	case "welcome", "":
		tpl = drafts.WelcomeTemplate()
	default:
		return nil, core.NewValidationError(fmt.Sprintf("unknown template %q", name))
	}

	store := h.drafts.ForOwner(ctx.UserID)
	id := store.AddTemplateDraft(tpl)
	return h.showDraft(store, id, "📝 Template added, finish it and publish when ready.")
}

// HandleResolve looks up the mentions of a draft ahead of publishing
func (h *CastHandler) HandleResolve(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	store, draft, err := h.draftAt(ctx)
	if err != nil {
		return nil, err
	}

	handles := formatter.MentionedHandles(draft.Text)
	if len(handles) == 0 {
		return core.Respond(core.NewEphemeralResponse("That draft doesn't mention anyone."))
	}

	resolved, err := h.resolver.Resolve(ctx.Context, handles)
	if err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeUnavailable, "could not look up mentions")
	}

	mentions := maps.Clone(draft.MentionsToFids)
	if mentions == nil {
		mentions = make(map[string]uint64, len(resolved))
	}
	var unknown []string
	for _, handle := range handles {
		fid, ok := resolved[handle]
		if !ok || fid == 0 {
			unknown = append(unknown, "@"+handle)
			continue
		}
		mentions[handle] = fid
	}
	store.UpdateMentionsByID(draft.ID, mentions)

	content := fmt.Sprintf("🔎 Resolved %d of %d mention(s).", len(handles)-len(unknown), len(handles))
	if len(unknown) > 0 {
		content += " Not on Farcaster: " + strings.Join(unknown, ", ")
	}
	return h.showDraft(store, draft.ID, content)
}

// HandleAccount shows the publishing account, or switches to a read-only
// account when fid is given
func (h *CastHandler) HandleAccount(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	if fid := ctx.GetIntParam("fid"); fid > 0 {
		name := strings.TrimPrefix(ctx.GetStringParam("name"), "@")
		if name == "" {
			name = fmt.Sprintf("fid:%d", fid)
		}
		account := &entities.Account{
			ID:       fmt.Sprintf("readonly-%d", fid),
			Name:     name,
			FID:      uint64(fid),
			Platform: entities.AccountPlatformFarcasterReadOnly,
		}
		if err := h.accounts.Select(ctx.Context, ctx.UserID, account); err != nil {
			return nil, err
		}
	}

	account, err := h.accounts.Get(ctx.Context, ctx.UserID)
	if err != nil {
		return nil, err
	}

	mode := "✅ can publish"
	if account.IsReadOnly() {
		mode = "👀 read-only, publishing will be refused by the hub"
	}
	embed := builders.NewEmbed().
		Title("Publishing account").
		Color(builders.ColorFarcaster).
		Field("Name", account.Name, true).
		Field("FID", fmt.Sprintf("%d", account.FID), true).
		Field("Signer", mode, false).
		Build()
	return core.Respond(core.NewEmbedResponse(embed))
}

// HandlePublish publishes a draft by number
func (h *CastHandler) HandlePublish(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	store, draft, err := h.draftAt(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := h.publish(ctx, store, draft.ID)
	if err != nil {
		return nil, err
	}
	return core.Respond(resp)
}

// HandlePublishButton publishes the draft the button belongs to
func (h *CastHandler) HandlePublishButton(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	store := h.drafts.ForOwner(ctx.UserID)
	resp, err := h.publish(ctx, store, ctx.Target())
	if err != nil {
		return nil, err
	}
	return core.Respond(resp.AsUpdate())
}

// HandleEditButton opens the edit modal prefilled with the draft text
func (h *CastHandler) HandleEditButton(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	draft, ok := h.drafts.ForOwner(ctx.UserID).GetByID(ctx.Target())
	if !ok {
		return nil, apperr.NotFound("that draft no longer exists")
	}

	err := ctx.Responder.ShowModal(&core.Modal{
		CustomID: h.ids.Modal("save", draft.ID),
		Title:    "Edit draft",
		Inputs: []discordgo.TextInput{{
			CustomID:  textField,
			Label:     "Cast text",
			Style:     discordgo.TextInputParagraph,
			Value:     draft.Text,
			Required:  false,
			MaxLength: 1024,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to show edit modal: %w", err)
	}
	return &core.HandlerResult{}, nil
}

// HandleSaveModal stores the text submitted from the edit modal
func (h *CastHandler) HandleSaveModal(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	store := h.drafts.ForOwner(ctx.UserID)
	draft, ok := store.GetByID(ctx.Target())
	if !ok {
		return nil, apperr.NotFound("that draft no longer exists")
	}
	return h.saveText(store, draft, ctx.GetStringParam(textField))
}

// HandleRemoveButton drops the draft the button belongs to
func (h *CastHandler) HandleRemoveButton(ctx *core.InteractionContext) (*core.HandlerResult, error) {
	h.drafts.ForOwner(ctx.UserID).RemoveDraftByID(ctx.Target())

	resp := core.NewResponse("🗑️ Draft removed.").AsUpdate()
	resp.Embeds = []*discordgo.MessageEmbed{}
	resp.Components = []discordgo.MessageComponent{}
	return core.Respond(resp)
}

func (h *CastHandler) publish(ctx *core.InteractionContext, store *drafts.Store, id string) (*core.Response, error) {
	account, err := h.accounts.Get(ctx.Context, ctx.UserID)
	if err != nil {
		return nil, err
	}

	var (
		notices   []string
		published *entities.Draft
		result    *hub.SubmitResult
	)
	err = store.PublishByID(ctx.Context, id, account,
		drafts.WithNotice(func(message string) {
			notices = append(notices, "⚠️ "+message)
		}),
		drafts.WithOnPublished(func(d *entities.Draft, r *hub.SubmitResult) {
			published, result = d, r
		}),
	)
	if err != nil {
		return nil, err
	}

	h.logger.Info("cast published",
		zap.String("user", ctx.UserID),
		zap.String("draft", id),
		zap.String("hash", result.Hash))

	url := builders.CastURL(account.Name, result.Hash)
	resp := core.NewEphemeralResponse(strings.Join(notices, "\n")).
		WithEmbeds(builders.PublishedEmbed(published.Text, url).Build())
	if result.Hash != "" {
		resp.WithComponents(builders.NewComponentBuilder(h.ids).LinkButton("View on Warpcast", url).Build()...)
	} else {
		resp.Components = []discordgo.MessageComponent{}
	}
	return resp, nil
}

func (h *CastHandler) saveText(store *drafts.Store, draft *entities.Draft, text string) (*core.HandlerResult, error) {
	draft.Text = text
	draft.LastError = ""
	if err := store.ReplaceDraftByID(draft.ID, draft); err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("that draft no longer exists")
		}
		return nil, err
	}
	return h.showDraft(store, draft.ID, "✏️ Draft saved.")
}

// draftAt resolves the 1-based number option to a draft
func (h *CastHandler) draftAt(ctx *core.InteractionContext) (*drafts.Store, *entities.Draft, error) {
	number := ctx.GetIntParam("number")
	if number < 1 {
		return nil, nil, core.NewValidationError("number must be 1 or more, see /cast list")
	}

	store := h.drafts.ForOwner(ctx.UserID)
	draft, ok := store.Get(number - 1)
	if !ok {
		return nil, nil, apperr.NotFoundf("there is no draft #%d, see /cast list", number)
	}
	return store, draft, nil
}

func (h *CastHandler) showDraft(store *drafts.Store, id, content string) (*core.HandlerResult, error) {
	index := store.IndexOf(id)
	draft, ok := store.GetByID(id)
	if !ok || index < 0 {
		return nil, apperr.NotFound("that draft no longer exists")
	}

	resp := core.NewEphemeralResponse(content).
		WithEmbeds(builders.DraftEmbed(index+1, draft).Build()).
		WithComponents(builders.DraftActions(h.ids, draft)...)
	return core.Respond(resp)
}
