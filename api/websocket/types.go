package websocket

type ConnectParams struct {
	Channel string `form:"channel" binding:"max=128"`
}
