// Command postctl generates a post from the terminal.
//
// It logs in over REST, opens the generation socket with the session cookie
// and prints the result as JSON:
//
//	postctl -user alice -password secret -platform linkedin "we shipped v2"
//
// -register creates the account first and -save stores the result in the
// user's content history.
package main
