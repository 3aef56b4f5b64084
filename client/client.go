package client

import (
	"fmt"
	"image"

	"FractalRenderer/export"
	"FractalRenderer/misc"
	"FractalRenderer/rpc"
	"FractalRenderer/server"
	"github.com/BrugadaSyndrome/bslogger"
)

// Client renders images on a remote render server.
type Client struct {
	logger        bslogger.Logger
	serverAddress string
	exported      int

	Client *rpc.TcpClient
}

// NewClient connects to the render server at serverAddress.
func NewClient(serverAddress string) (*Client, error) {
	c := &Client{
		logger:        bslogger.NewLogger(fmt.Sprintf("Client %s", serverAddress), bslogger.Normal, nil),
		serverAddress: serverAddress,
		Client:        rpc.NewTcpClient(serverAddress, "RenderClient"),
	}
	if err := c.Client.Connect(); err != nil {
		return nil, err
	}
	present, err := c.RollCall()
	if err != nil {
		_ = c.Client.Disconnect()
		return nil, err
	}
	if !present {
		_ = c.Client.Disconnect()
		return nil, fmt.Errorf("server at %s did not answer roll call", serverAddress)
	}
	return c, nil
}

func (c *Client) RollCall() (bool, error) {
	var nothing misc.Nothing
	var present bool
	err := c.Client.Call("Renderer.RollCall", nothing, &present)
	return present, err
}

// Export renders req remotely and rebuilds the image from the returned pixels.
func (c *Client) Export(req export.Request) (*image.RGBA, error) {
	var reply server.ExportReply
	if err := c.Client.Call("Renderer.Export", server.ExportArgs{Request: req}, &reply); err != nil {
		return nil, err
	}
	if reply.Width <= 0 || reply.Height <= 0 || len(reply.Pix) != reply.Width*reply.Height*4 {
		return nil, fmt.Errorf("%w: server sent %d bytes for %dx%d", misc.ErrShapeMismatch, len(reply.Pix), reply.Width, reply.Height)
	}
	img := &image.RGBA{
		Pix:    reply.Pix,
		Stride: reply.Width * 4,
		Rect:   image.Rect(0, 0, reply.Width, reply.Height),
	}
	c.exported++
	c.logger.Infof("%s [Exports: %d]", reply.Message, c.exported)
	return img, nil
}

func (c *Client) Kernels() ([]server.KernelInfo, error) {
	var nothing misc.Nothing
	var kernels []server.KernelInfo
	err := c.Client.Call("Renderer.Kernels", nothing, &kernels)
	return kernels, err
}

func (c *Client) Colorings() ([]string, error) {
	var nothing misc.Nothing
	var names []string
	err := c.Client.Call("Renderer.Colorings", nothing, &names)
	return names, err
}

func (c *Client) ColorPacks() ([]string, error) {
	var nothing misc.Nothing
	var names []string
	err := c.Client.Call("Renderer.ColorPacks", nothing, &names)
	return names, err
}

func (c *Client) ColorMaps(pack string) ([]string, error) {
	var names []string
	err := c.Client.Call("Renderer.ColorMaps", pack, &names)
	return names, err
}

// ReloadColorPacks asks the server to re-read its colour packs and returns the new pack names.
func (c *Client) ReloadColorPacks() ([]string, error) {
	var nothing misc.Nothing
	var names []string
	err := c.Client.Call("Renderer.ReloadColorPacks", nothing, &names)
	return names, err
}

func (c *Client) Close() error {
	return c.Client.Disconnect()
}
