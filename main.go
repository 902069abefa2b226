package main

import "github.com/melosbot/telegram-chat-organizer/cmd"

func main() {
	cmd.Execute()
}
