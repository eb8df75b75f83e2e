package session

import (
	"strings"

	"github.com/PatelShiv10/sgp-7-sem-sub001/internal/domain"
)

const chatIDPrefix = "chat_"

// DeriveChatID returns the chat id shared by a and b. It sorts the two ids so
// DeriveChatID(a, b) == DeriveChatID(b, a).
func DeriveChatID(a, b domain.UserID) domain.ChatID {
	lo, hi := a, b
	if hi < lo {
		lo, hi = hi, lo
	}
	return domain.ChatID(chatIDPrefix + lo.String() + "_" + hi.String())
}

// PeerOf returns the other participant of chatID as seen by me. It reports
// false when me does not take part in the chat.
func PeerOf(chatID domain.ChatID, me domain.UserID) (domain.UserID, bool) {
	rest, ok := strings.CutPrefix(chatID.String(), chatIDPrefix)
	if !ok || me == "" {
		return "", false
	}
	candidates := make([]domain.UserID, 0, 2)
	if p, ok := strings.CutPrefix(rest, me.String()+"_"); ok {
		candidates = append(candidates, domain.UserID(p))
	}
	if p, ok := strings.CutSuffix(rest, "_"+me.String()); ok {
		candidates = append(candidates, domain.UserID(p))
	}
	for _, peer := range candidates {
		if peer != "" && DeriveChatID(me, peer) == chatID {
			return peer, true
		}
	}
	return "", false
}
