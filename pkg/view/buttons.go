package view

import (
	"net/url"

	"github.com/goliatone/go-dcgeneral/pkg/definition"
	"github.com/goliatone/go-dcgeneral/pkg/model"
	"github.com/goliatone/go-dcgeneral/pkg/translate"
)

// Button is a rendered operation link.
type Button struct {
	Name  string `json:"name"`
	Href  string `json:"href"`
	Title string `json:"title"`
	Icon  string `json:"icon,omitempty"`
	Class string `json:"class,omitempty"`
	// Confirm holds a confirmation prompt for destructive operations.
	Confirm string `json:"confirm,omitempty"`
}

func (b *Base) button(def *definition.Definition, name, query, icon string) Button {
	title := b.buttonLabel(def, name+".1")
	if title == name+".1" {
		title = b.buttonLabel(def, name+".0")
	}
	return Button{
		Name:  name,
		Href:  b.url(query),
		Title: title,
		Icon:  b.icon(icon, title),
	}
}

// rowButtons returns the operations of a listed record. Move buttons need a
// manual sort order and an existing sibling in that direction.
func (b *Base) rowButtons(def *definition.Definition, m, prev, next *model.Model) []Button {
	token := url.QueryEscape(m.ModelID().Serialize())
	var out []Button

	if def.Basic.Editable {
		out = append(out, b.button(def, "edit", "act=edit&id="+token, "edit"))
	}
	if def.Basic.Creatable && !def.Basic.Closed {
		out = append(out,
			b.button(def, "copy", "act=copy&source="+token, "copy"),
			b.button(def, "cut", "act=cut&source="+token, "cut"),
		)
	}
	if def.Basic.Deletable {
		del := b.button(def, "delete", "act=delete&id="+token, "delete")
		del.Confirm = b.env.Translate("deleteConfirm", translate.DomainMSC, m.ID())
		out = append(out, del)
	}
	out = append(out, b.button(def, "show", "act=show&id="+token, "show"))

	if def.IsSortable() && def.Basic.Editable {
		if prev != nil {
			out = append(out, b.button(def, "up", "act=move&id="+token+"&sid="+url.QueryEscape(prev.ModelID().Serialize()), "up"))
		}
		if next != nil {
			out = append(out, b.button(def, "down", "act=move&id="+token+"&sid="+url.QueryEscape(next.ModelID().Serialize()), "down"))
		}
	}
	return out
}

func (b *Base) selectAllButton(def *definition.Definition) Button {
	return Button{
		Name:  "selectAll",
		Title: b.buttonLabel(def, "selectAll"),
		Class: "tl_select_trigger",
	}
}

// pasteAfterButton targets the pending clipboard action, optionally below a
// parent token.
func (b *Base) pasteAfterButton(def *definition.Definition, parentToken string) (Button, bool) {
	clip := b.env.Clipboard()
	if clip.IsEmpty() {
		return Button{}, false
	}
	query := "act=" + string(clip.Mode()) + "&mode=2"
	if parentToken != "" {
		query += "&pid=" + url.QueryEscape(parentToken)
	}
	btn := b.button(def, "pasteafter", query, "pasteafter")
	if parentToken != "" {
		if id, err := model.Unpack(parentToken); err == nil {
			btn.Title = b.env.Translate("pasteafter.1", translate.DomainMSC, id.ID)
		}
	}
	btn.Class = "header_paste"
	return btn, true
}
