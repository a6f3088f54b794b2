package main

import (
	"encoding/json"

	"github.com/shafreeck/cortana"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// unmarshalJSONC accepts json config files with comments and trailing
// commas
func unmarshalJSONC(data []byte, v interface{}) error {
	return json.Unmarshal(jsonc.ToJSON(data), v)
}

func main() {
	s := New()
	unmarshaler := cortana.UnmarshalFunc(unmarshalJSONC)
	cortana.AddConfig("studio.json", unmarshaler)
	cortana.AddConfig(expandPath("~/.config/studio/studio.json"), unmarshaler)
	cortana.AddConfig(expandPath("~/.studio/config.yaml"), cortana.UnmarshalFunc(yaml.Unmarshal))
	cortana.Use(cortana.ConfFlag("--conf", "-c", unmarshaler))

	cortana.AddCommand("render", s.RenderCommand, "render markdown from a file or stdin")
	cortana.AddCommand("chat", s.ChatCommand, "chat with the studio assistant")
	cortana.AddCommand("conversation list", s.ConversationListCommand, "list conversations")
	cortana.AddCommand("conversation show", s.ConversationShowCommand, "show a conversation")
	cortana.AddCommand("conversation create", s.ConversationCreateCommand, "create a conversation")
	cortana.AddCommand("conversation rename", s.ConversationRenameCommand, "rename a conversation")
	cortana.AddCommand("conversation delete", s.ConversationDeleteCommand, "delete conversations")
	cortana.AddCommand("login", s.LoginCommand, "save the access token")
	cortana.AddCommand("logout", s.LogoutCommand, "remove the saved access token")
	cortana.AddCommand("whoami", s.WhoamiCommand, "show the logged in account")
	cortana.AddCommand("config", s.ConfigCommand, "show, get or set the configuration")

	cortana.Alias("ls", "conversation list")
	cortana.Alias("review", `chat --system "Review the following code and reply in markdown"`)
	cortana.Alias("explain", `chat --system "Explain the following text, use code blocks for any code"`)
	cortana.Launch()
}
