package discord

import (
	"testing"

	"writer_digest_bot/internal/domain/chat"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberID(t *testing.T) {
	assert.Equal(t, "42", memberID("<@42>"))
	assert.Equal(t, "42", memberID("<@!42>"))
	assert.Equal(t, "1234567890", memberID("1234567890"))
	assert.Empty(t, memberID("sora"))
	assert.Empty(t, memberID("<@sora>"))
	assert.Empty(t, memberID(""))
}

func TestAllows(t *testing.T) {
	assert.True(t, allows(discordgo.PermissionAdministrator, chat.PermissionKickMembers))
	assert.True(t, allows(discordgo.PermissionAdministrator, chat.PermissionAdministrator))
	assert.True(t, allows(discordgo.PermissionKickMembers, chat.PermissionKickMembers))
	assert.False(t, allows(discordgo.PermissionKickMembers, chat.PermissionAdministrator))
	assert.False(t, allows(discordgo.PermissionSendMessages, chat.PermissionKickMembers))
	assert.True(t, allows(0, chat.PermissionNone))
}

func TestFindMember(t *testing.T) {
	members := []*discordgo.Member{
		{User: nil},
		{User: &discordgo.User{ID: "1", Username: "sora"}},
		{User: &discordgo.User{ID: "2", Username: "mina"}, Nick: "みな"},
	}
	require.NotNil(t, findMember(members, "sora"))
	assert.Equal(t, "2", findMember(members, "みな").User.ID)
	assert.Nil(t, findMember(members, "nobody"))
	require.NotNil(t, findMember(members, "@sora"))
	assert.Equal(t, "1", findMember(members, "@sora").User.ID)
	assert.Equal(t, "2", findMember(members, "@みな").User.ID)
	assert.Nil(t, findMember(members, "@"))
}

func TestFindRole(t *testing.T) {
	roles := []*discordgo.Role{{ID: "r1", Name: "@everyone"}, {ID: "r2", Name: "新規メンバー"}}
	assert.Equal(t, "r2", findRole(roles, "新規メンバー").ID)
	assert.Nil(t, findRole(roles, "管理者"))
}

func TestToEmbed(t *testing.T) {
	card := &chat.Card{Title: "【進捗確認】", Color: 0xe67e22, Footer: "f"}
	card.AddField("進捗", "■■□□□□□□□□ 25.0%", false)

	e := toEmbed(card)
	assert.Equal(t, "【進捗確認】", e.Title)
	assert.Equal(t, 0xe67e22, e.Color)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "進捗", e.Fields[0].Name)
	require.NotNil(t, e.Footer)
	assert.Equal(t, "f", e.Footer.Text)

	assert.Nil(t, toEmbed(&chat.Card{Title: "t"}).Footer)
}
