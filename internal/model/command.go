package model

// Command is the tagged-variant type for everything a connection can
// ask the server to do. The transport parses raw lines into exactly
// one of these; the session layer dispatches on the concrete type, so
// an invalid variant-for-phase combination is rejected uniformly by
// the match state machine rather than by ad hoc string checks.
type Command interface {
	isCommand()
}

// IdentifyCommand establishes or resumes an identity for a connection.
// It must be the first command on any connection.
type IdentifyCommand struct {
	Name PlayerName
}

// PlaceShipCommand places one ship during the placement phase
type PlaceShipCommand struct {
	Origin      Coordinate
	Orientation Orientation
	Length      int
}

// FireCommand fires at a cell of the opponent's board during the turn phase
type FireCommand struct {
	Target Coordinate
}

// ChatCommand relays a message to everyone observing the sender's match
type ChatCommand struct {
	Message string
}

// QuitCommand asks the server to close the connection
type QuitCommand struct{}

func (IdentifyCommand) isCommand()  {}
func (PlaceShipCommand) isCommand() {}
func (FireCommand) isCommand()      {}
func (ChatCommand) isCommand()      {}
func (QuitCommand) isCommand()      {}
