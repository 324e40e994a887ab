package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	deviceGrpc "liyu1981.xyz/device-manager-service/pkg/grpc"
)

var maxDevices int = 15
var rounds int = 200
var httpHostPort string = "127.0.0.1:1080"
var grpcHostPort string = "127.0.0.1:10801"

var grpcClient *deviceGrpc.DeviceServiceClient

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
var rndMu sync.Mutex

var failures atomic.Int64

type target struct {
	kind string
	id   string
}

func main() {
	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	fmt.Printf("http server verified\n")

	conn, err := grpc.NewClient(grpcHostPort, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatal("Failed to connect to gRPC server:", err)
	}
	defer conn.Close()
	grpcClient = deviceGrpc.NewDeviceServiceClient(conn)

	fmt.Printf("gRPC client created\n")

	targets := make([]target, maxDevices)
	for i := range maxDevices {
		targets[i] = target{kind: []string{"sw", "pc", "ed"}[i%3], id: fmt.Sprintf("bench-%d", i)}
	}

	var startTime time.Time
	var usedTime time.Duration

	startTime = time.Now()
	wg := sync.WaitGroup{}
	for i := range maxDevices {
		wg.Add(1)
		go func() {
			defer wg.Done()
			addDevice(targets[i])
			fmt.Printf("\radded device %v", i)
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\radded %v devices: used time=%v seconds, throughput=%v action/second\n",
		maxDevices, usedTime.Seconds(), float64(maxDevices)/usedTime.Seconds(),
	)

	startTime = time.Now()
	wg = sync.WaitGroup{}
	for i := range maxDevices {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range rounds {
				toggle(targets[i], "on")
				toggle(targets[i], "off")
			}
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\n\rtoggled %v devices %v times: used time=%v seconds, throughput=%v action/second, failures=%v\n",
		maxDevices, rounds, usedTime.Seconds(), float64(maxDevices*rounds*2)/usedTime.Seconds(), failures.Load(),
	)

	for _, t := range targets {
		removeDevice(t)
	}
}

func flipCoin() bool {
	rndMu.Lock()
	defer rndMu.Unlock()
	return rnd.Int31n(100000)%2 == 0
}

func fields(t target) map[string]any {
	f := map[string]any{"kind": t.kind, "id": t.id, "name": "Bench " + t.id}
	switch t.kind {
	case "sw":
		f["battery_percentage"] = 100
	case "pc":
		f["operating_system"] = "Linux"
	case "ed":
		f["ip_address"] = "10.0.0.1"
		f["network_name"] = "MD Ltd.Bench"
	}
	return f
}

func report(err error, status int) {
	if err != nil {
		failures.Add(1)
		fmt.Printf("\nerror: %v\n", err)
		return
	}
	if status >= 300 {
		failures.Add(1)
		fmt.Printf("\nresponse status code: %v\n", status)
	}
}

func addDevice(t target) {
	if flipCoin() {
		jsonData, _ := json.Marshal(fields(t))
		resp, err := http.Post(fmt.Sprintf("http://%s/api/devices/%s", httpHostPort, t.kind), "application/json", bytes.NewBuffer(jsonData))
		if err != nil {
			report(err, 0)
			return
		}
		defer resp.Body.Close()
		report(nil, resp.StatusCode)
	} else {
		_, err := grpcClient.Call(context.Background(), deviceGrpc.MethodAddDevice, fields(t))
		report(err, 0)
	}
}

// toggle switches the device, a smartwatch is recharged first so it never
// runs flat during the run.
func toggle(t target, state string) {
	if t.kind == "sw" && state == "on" {
		_, err := grpcClient.Call(context.Background(), deviceGrpc.MethodUpdateBattery,
			map[string]any{"kind": t.kind, "id": t.id, "battery_percentage": 100})
		report(err, 0)
	}

	if flipCoin() {
		resp, err := http.Post(fmt.Sprintf("http://%s/api/devices/%s/%s/%s", httpHostPort, t.kind, t.id, state), "application/json", nil)
		if err != nil {
			report(err, 0)
			return
		}
		defer resp.Body.Close()
		report(nil, resp.StatusCode)
	} else {
		method := deviceGrpc.MethodTurnOn
		if state == "off" {
			method = deviceGrpc.MethodTurnOff
		}
		_, err := grpcClient.Call(context.Background(), method, map[string]any{"kind": t.kind, "id": t.id})
		report(err, 0)
	}
}

func removeDevice(t target) {
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("http://%s/api/devices/%s/%s", httpHostPort, t.kind, t.id), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		report(err, 0)
		return
	}
	defer resp.Body.Close()
	report(nil, resp.StatusCode)
}
