// ABOUTME: Gemini REST client package
// ABOUTME: Wraps generateContent for structured text and speech responses
// Package gemini is a small client for the Gemini generateContent API.
//
//	c := gemini.NewClient(apiKey)
//	resp, err := c.GenerateContent(ctx, "gemini-2.5-flash", &gemini.Request{
//		Contents: gemini.UserText("Say hello"),
//	})
//	fmt.Println(resp.Text())
package gemini
