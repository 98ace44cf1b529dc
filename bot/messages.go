package bot

import (
	"fmt"
	"strings"
)

const (
	textGreeting = "Greetings, User. Please, verify your account. " +
		"For proper authorization insert the verification code provided by the Telegram bot " +
		"into the application while being logged in."

	textNoGoals         = "You have no active goals. Send /create to start one."
	textGoalsTrailer    = "Send /create to add a new goal."
	textNoCategories    = "You have no categories yet. Create one in the web application first."
	textInvalidCategory = "Invalid category, please try again."
	textEmptyTitle      = "Title cannot be empty, please send the goal title."
	textCancelled       = "Operation cancelled."
	textCreateFailed    = "Could not save the goal, please try again."
)

func verificationText(code string) string {
	return "Verification code: " + code
}

func unknownCommandText(reg *Registry) string {
	var b strings.Builder
	b.WriteString("Unknown command. Available commands:")
	for _, cmd := range reg.List() {
		b.WriteString("\n")
		b.WriteString(cmd.Name)
		b.WriteString(" - ")
		b.WriteString(cmd.Description)
	}
	return b.String()
}

func categoriesPromptText(options []CategoryOption) string {
	var b strings.Builder
	b.WriteString("Choose a category for the new goal:")
	for _, opt := range options {
		fmt.Fprintf(&b, "\n%d - %s", opt.Ordinal, opt.Title)
	}
	b.WriteString("\nReply with the number or the exact title.")
	return b.String()
}

func categorySelectedText(title string) string {
	return fmt.Sprintf("Category %q selected. Now send the goal title.", title)
}

func goalCreatedText(title string, goalID int64, webAppURL string) string {
	if webAppURL == "" {
		return fmt.Sprintf("Goal %q created.", title)
	}
	return fmt.Sprintf("Goal %q created: %s/goals/%d", title, webAppURL, goalID)
}
