package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/log"
	"github.com/gorilla/websocket"
)

// HandleFunc upgrades a request to a websocket client of the results feed.
// The client stays registered until it disconnects or the controller shuts down.
func (ctr *Controller) HandleFunc(w http.ResponseWriter, r *http.Request) {
	r.Header.Del("Origin")
	ctr.clientLock.Lock()

	select {
	case <-ctr.clientStop:
		ctr.clientLock.Unlock()
		return
	default:
	}
	ctr.waitGroup.Add(1)

	ws, err := ctr.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ctr.clientLock.Unlock()
		ctr.waitGroup.Done()
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	ctr.clients[ws] = true
	ctr.clientLock.Unlock()
	log.Debug().Str("remote", r.RemoteAddr).Msg("websocket client connected")

	defer func() {
		ctr.clientLock.Lock()
		delete(ctr.clients, ws)
		ctr.clientLock.Unlock()
		ws.Close()
		ctr.waitGroup.Done()
	}()

loop:
	for {
		_, data, err := ws.ReadMessage()
		if err == nil {
			select {
			case ctr.wsRecv <- data:
			case <-ctr.clientStop:
				break loop
			case <-time.After(time.Second):
			}
		} else {
			log.Debug().Err(err).Msg("websocket read error")
			break loop
		}
	}
}

// webReceiveLoop answers client requests, the answer goes out on the feed
func (ctr *Controller) webReceiveLoop() {
	defer close(ctr.doneWsRecv)

loop:
	for {
		select {
		case <-ctr.recvStop:
			break loop
		case data := <-ctr.wsRecv:
			ctr.broadcast(ctr.handleMessage(data))
		}
	}
}

// webSendLoop writes every queued message to each connected client
func (ctr *Controller) webSendLoop() {
	defer close(ctr.doneWsSend)

loop:
	for {
		select {
		case <-ctr.sendStop:
			break loop
		case data := <-ctr.wsSend:
			ctr.clientLock.Lock()
			for ws := range ctr.clients {
				if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
					log.Debug().Err(err).Msg("websocket write error")
				}
			}
			ctr.clientLock.Unlock()
		}
	}
}

// webShutdown disconnects the clients, then stops the receive loop before the send loop
func (ctr *Controller) webShutdown() error {
	var err error
	ctr.clientLock.Lock()
	close(ctr.clientStop)
	for c := range ctr.clients {
		c.Close()
	}

	ctr.clients = make(map[*websocket.Conn]bool)
	ctr.clientLock.Unlock()

	// No client handler may still push into wsRecv
	ctr.waitGroup.Wait()

	close(ctr.recvStop)

	select {
	case <-ctr.doneWsRecv:
	case <-time.After(time.Second * 5):
		err = errors.New("Failed to stop recv loop")
	}

	close(ctr.sendStop)

	select {
	case <-ctr.doneWsSend:
	case <-time.After(time.Second * 5):
		err = errors.New("Failed to stop send loop")
	}
	return err
}
