// Copyright 2019 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// sxresetd supervises one Mellanox switch ASIC: it publishes the
// system status byte to redis, accepts reset tunables through redis
// hsets, and runs reset/verify requests sent over its rpc socket.
//
//	sxresetd -addr PCI_ADDR [-skip-boot-check] [-trigger-unarmed]
//	sxresetd -reset | -verify | -status
//
// The first form runs the daemon; the others talk to it.
package main

import (
	"errors"
	"fmt"
	"net/rpc"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/platinasystems/atsock"
	"github.com/platinasystems/flags"
	"github.com/platinasystems/log"
	"github.com/platinasystems/parms"
	"github.com/platinasystems/redis"
	"github.com/platinasystems/redis/publisher"
	"github.com/platinasystems/redis/rpc/args"
	"github.com/platinasystems/redis/rpc/reply"

	"github.com/platinasystems/sx"
	"github.com/platinasystems/sx/pcibus"
)

const sockname = "sxresetd"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "sxresetd: ", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	flag, argv := flags.New(argv, "-reset", "-verify", "-status",
		"-skip-boot-check", "-trigger-unarmed")
	parm, argv := parms.New(argv, "-addr")
	if len(argv) > 0 {
		return fmt.Errorf("%v: unexpected", argv)
	}

	switch {
	case flag.ByName["-reset"]:
		return clientReset(true)
	case flag.ByName["-verify"]:
		return clientReset(false)
	case flag.ByName["-status"]:
		return clientStatus()
	}

	addr := parm.ByName["-addr"]
	if len(addr) == 0 {
		return errors.New("missing -addr PCI_ADDR")
	}
	return daemon(addr, flag.ByName["-skip-boot-check"],
		flag.ByName["-trigger-unarmed"])
}

func clientReset(destructive bool) error {
	cl, err := atsock.NewRpcClient(sockname)
	if err != nil {
		return err
	}
	defer cl.Close()
	var empty struct{}
	return cl.Call("Control.Reset", destructive, &empty)
}

func clientStatus() error {
	cl, err := atsock.NewRpcClient(sockname)
	if err != nil {
		return err
	}
	defer cl.Close()
	var status byte
	if err = cl.Call("Control.Status", struct{}{}, &status); err != nil {
		return err
	}
	fmt.Printf("0x%02x\n", status)
	return nil
}

func daemon(addr string, skipBootCheck, triggerUnarmed bool) error {
	err := redis.IsReady()
	if err != nil {
		return err
	}

	bus, err := pcibus.New(addr)
	if err != nil {
		return err
	}
	dev, err := sx.NewDevice(bus)
	if err != nil {
		return err
	}
	log.Print("notice: ", addr, ": ", dev.Family, " device")

	settings := sx.DefaultSettings()
	settings.SetSkipBootCheck(skipBootCheck)
	settings.SetTriggerArmed(!triggerUnarmed)

	c := &Control{
		dev:    dev,
		driver: &sx.Driver{Settings: settings},
		lasts:  make(map[string]string),
		stop:   make(chan struct{}),
	}

	if c.pub, err = publisher.New(); err != nil {
		return err
	}
	if c.rpc, err = atsock.NewRpcServer(sockname); err != nil {
		return err
	}
	defer c.rpc.Close()

	rpc.Register(c)
	rpc.Register(&Info{settings: settings})
	if err = redis.Assign(redis.DefaultHash+":sx.reset.", sockname,
		"Info"); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		close(c.stop)
	}()

	t := time.NewTicker(5 * time.Second)
	defer t.Stop()
	c.publish()
	for {
		select {
		case <-c.stop:
			return nil
		case <-t.C:
			c.publish()
		}
	}
}

// Control serves reset and status requests over the rpc socket.
type Control struct {
	mutex  sync.Mutex
	dev    *sx.Device
	driver *sx.Driver
	rpc    *atsock.RpcServer
	pub    *publisher.Publisher
	lasts  map[string]string
	stop   chan struct{}
}

func (c *Control) Reset(destructive bool, _ *struct{}) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.set("sx.reset.in_progress", "true")
	err := c.driver.Reset(c.dev, destructive)
	c.set("sx.reset.in_progress", "false")
	if err != nil {
		c.set("sx.reset.last_error", err.Error())
		return err
	}
	c.set("sx.reset.last_error", "")
	return nil
}

func (c *Control) Status(_ struct{}, status *byte) error {
	b, err := sx.GetSystemStatus(c.dev)
	if err != nil {
		return err
	}
	*status = b
	return nil
}

func (c *Control) publish() {
	c.set("sx.family", c.dev.Family.String())
	status, err := sx.GetSystemStatus(c.dev)
	if err != nil {
		c.set("sx.status", err.Error())
		return
	}
	c.set("sx.status", fmt.Sprintf("0x%02x", status))
}

// set publishes on change, the way the goes monitoring daemons do.
func (c *Control) set(k, v string) {
	if c.lasts[k] != v {
		c.pub.Print(k, ": ", v)
		c.lasts[k] = v
	}
}

// Info handles redis hsets of the reset tunables.  Settings does its
// own locking, so an hset may arm the trigger while a reset is waiting
// on it.
type Info struct {
	settings *sx.Settings
}

func (i *Info) Hset(a args.Hset, r *reply.Hset) error {
	v, err := strconv.ParseBool(string(a.Value))
	if err != nil {
		return err
	}
	switch a.Field {
	case "sx.reset.trigger":
		i.settings.SetTriggerArmed(v)
	case "sx.reset.skip_boot_check":
		i.settings.SetSkipBootCheck(v)
	default:
		return fmt.Errorf("cannot hset: %s", a.Field)
	}
	*r = 1
	return nil
}
