package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"chatbox-backend/internal/client/conversation"
	"chatbox-backend/internal/models"
)

var errNoChat = errors.New("no saved chat selected")

func (a *App) NewChat(ctx context.Context) error {
	if !a.requireLogin() {
		return nil
	}
	a.startChat()
	return nil
}

// Say sends text as the next user turn of the current chat.
func (a *App) Say(ctx context.Context, text string) error {
	if !a.requireLogin() {
		return nil
	}
	c := a.conv.Load()
	if c == nil {
		c = a.startChat()
	}
	fmt.Fprint(a.out, "ai: ")
	if err := c.Send(ctx, text, a.out); err != nil {
		if errors.Is(err, conversation.ErrBusy) {
			fmt.Fprintln(a.out, "Still answering, please wait.")
			return err
		}
		return a.fail("Could not save chat", err)
	}
	return nil
}

// List prints the user's chats, pinned first, numbered for open and delete.
func (a *App) List(ctx context.Context) error {
	if !a.requireLogin() {
		return nil
	}
	chats, err := a.backend.ListChats(ctx)
	if err != nil {
		return a.fail("Could not load chats", err)
	}
	sort.SliceStable(chats, func(i, j int) bool { return chats[i].IsPinned && !chats[j].IsPinned })
	a.lastList = chats

	if len(chats) == 0 {
		fmt.Fprintln(a.out, "No saved chats.")
		return nil
	}
	for i, c := range chats {
		var flags []string
		if c.IsPinned {
			flags = append(flags, "pinned")
		}
		if c.IsArchived {
			flags = append(flags, "archived")
		}
		line := fmt.Sprintf("#%d  %s  %s  %s", i+1, c.Title, c.Date.Local().Format("2006-01-02 15:04"), c.ID)
		if len(flags) > 0 {
			line += "  [" + strings.Join(flags, ", ") + "]"
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}

// Open makes a stored chat current and prints its transcript.
func (a *App) Open(ctx context.Context, ref string) error {
	if !a.requireLogin() {
		return nil
	}
	id, err := a.resolve(ref)
	if err != nil {
		return a.fail("Cannot open chat", err)
	}
	chat, err := a.backend.GetChat(ctx, id)
	if err != nil {
		return a.fail("Cannot open chat", err)
	}
	a.conv.Store(conversation.Open(a.backend, *chat, a.delay, a.log))

	fmt.Fprintf(a.out, "== %s ==\n", chat.Title)
	for _, m := range chat.Messages {
		who := "ai"
		if m.Type == models.RoleUser {
			who = "you"
		}
		fmt.Fprintf(a.out, "%s: %s\n", who, m.Text)
	}
	return nil
}

func (a *App) Rename(ctx context.Context, title string) error {
	if !a.requireLogin() {
		return nil
	}
	c, id, err := a.currentSaved()
	if err != nil {
		return a.fail("Cannot rename", err)
	}
	chat, err := a.backend.RenameChat(ctx, id, title)
	if err != nil {
		return a.fail("Cannot rename", err)
	}
	c.SetTitle(chat.Title)
	fmt.Fprintf(a.out, "Renamed to %q\n", chat.Title)
	return nil
}

func (a *App) Pin(ctx context.Context) error {
	if !a.requireLogin() {
		return nil
	}
	_, id, err := a.currentSaved()
	if err != nil {
		return a.fail("Cannot pin", err)
	}
	chat, err := a.backend.TogglePin(ctx, id)
	if err != nil {
		return a.fail("Cannot pin", err)
	}
	if chat.IsPinned {
		fmt.Fprintln(a.out, "Chat pinned.")
	} else {
		fmt.Fprintln(a.out, "Chat unpinned.")
	}
	return nil
}

func (a *App) Archive(ctx context.Context) error {
	if !a.requireLogin() {
		return nil
	}
	_, id, err := a.currentSaved()
	if err != nil {
		return a.fail("Cannot archive", err)
	}
	chat, err := a.backend.ToggleArchive(ctx, id)
	if err != nil {
		return a.fail("Cannot archive", err)
	}
	if chat.IsArchived {
		fmt.Fprintln(a.out, "Chat archived.")
	} else {
		fmt.Fprintln(a.out, "Chat restored from archive.")
	}
	return nil
}

// Delete removes the chat named by ref, or the current chat when ref is empty.
// Deleting the current chat starts a new one.
func (a *App) Delete(ctx context.Context, ref string) error {
	if !a.requireLogin() {
		return nil
	}
	var id string
	var err error
	if ref == "" {
		_, id, err = a.currentSaved()
	} else {
		id, err = a.resolve(ref)
	}
	if err != nil {
		return a.fail("Cannot delete", err)
	}
	if err := a.backend.DeleteChat(ctx, id); err != nil {
		return a.fail("Cannot delete", err)
	}
	fmt.Fprintln(a.out, "Chat deleted.")
	if c := a.conv.Load(); c != nil && c.ChatID() == id {
		a.startChat()
	}
	return nil
}

// resolve turns "#n" into the id of the n-th chat of the last listing.
func (a *App) resolve(ref string) (string, error) {
	if !strings.HasPrefix(ref, "#") {
		return ref, nil
	}
	n, err := strconv.Atoi(ref[1:])
	if err != nil || n < 1 || n > len(a.lastList) {
		return "", fmt.Errorf("no chat %s in the last list", ref)
	}
	return a.lastList[n-1].ID.String(), nil
}

func (a *App) currentSaved() (*conversation.Conversation, string, error) {
	c := a.conv.Load()
	if c == nil || c.ChatID() == "" {
		return nil, "", errNoChat
	}
	return c, c.ChatID(), nil
}
