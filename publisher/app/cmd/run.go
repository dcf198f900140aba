package cmd

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/proofgrid/publisher-api/keystore"
	"github.com/proofgrid/publisher-api/lib/logc"
	"github.com/proofgrid/publisher-api/lib/utils"
	"github.com/proofgrid/publisher-api/publisher/chain"
	"github.com/proofgrid/publisher-api/publisher/config"
	"github.com/proofgrid/publisher-api/publisher/estimator"
	"github.com/proofgrid/publisher-api/publisher/market"
	"github.com/proofgrid/publisher-api/publisher/service"
	"github.com/proofgrid/publisher-api/publisher/settle"
	"github.com/proofgrid/publisher-api/publisher/storage"
)

var logger = logc.Logger("cmd")

// init config
func init() {
	// parse config file
	err := config.InitConfig()
	if err != nil {
		log.Fatalf("failed to init the config: %v", err)
	}
}

var RunCmd = &cli.Command{
	Name:  "run",
	Usage: "procure one proof and settle it on the consumer contract",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "image",
			Aliases: []string{"i"},
			Usage:   "path of the guest image file",
		},
		&cli.Uint64Flag{
			Name:  "input",
			Usage: "numeric input for the guest",
			Value: 4,
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"pw"},
			Usage:   "password of current wallet",
			Value:   "publisher",
		},
		&cli.StringFlag{
			Name:  "sk",
			Usage: "raw private key, bypasses the keystore",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "keyfile",
			Usage: "path of an exported keyfile, bypasses the selected wallet",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "input-hex",
			Usage: "raw hex input for the guest, overrides --input",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "min-mcycle",
			Usage: "min price per megacycle in wei",
			Value: "1000000000000000",
		},
		&cli.StringFlag{
			Name:  "max-mcycle",
			Usage: "max price per megacycle in wei",
			Value: "2000000000000000",
		},
		&cli.UintFlag{
			Name:  "rampup",
			Usage: "price ramp up period in blocks",
			Value: 50,
		},
		&cli.UintFlag{
			Name:  "timeout",
			Usage: "request timeout in blocks",
			Value: 1000,
		},
		&cli.StringFlag{
			Name:  "stake",
			Usage: "prover lockin stake in wei",
			Value: "0",
		},
		&cli.Uint64Flag{
			Name:  "deadline",
			Usage: "wait budget in seconds, 0 waits until the request expires",
			Value: 0,
		},
		&cli.Uint64Flag{
			Name:  "poll",
			Usage: "fulfillment poll interval in seconds",
			Value: 5,
		},
		&cli.Uint64Flag{
			Name:  "confirm",
			Usage: "settlement confirmation timeout in seconds",
			Value: 12,
		},
	},
	Action: func(ctx *cli.Context) error {
		// signals cancel the run, in-flight ids are still reported
		cctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg := config.GetConfig()

		imagePath := ctx.String("image")
		if imagePath == "" {
			return fmt.Errorf("the guest image path must be given")
		}
		image, err := os.ReadFile(imagePath)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}

		programID, err := utils.Bytes32FromHex(cfg.Contracts.ProgramID)
		if err != nil {
			return fmt.Errorf("bad program id in config: %w", err)
		}

		// signing identity, a raw sk or keyfile bypasses the repo
		sk := ctx.String("sk")
		if sk == "" && ctx.String("keyfile") != "" {
			sk, err = keystore.LoadKeyFile(ctx.String("password"), ctx.String("keyfile"))
			if err != nil {
				return fmt.Errorf("load keyfile: %w", err)
			}
		}
		if sk == "" {
			if err := keystore.InitRepo(cfg.Key.Path); err != nil {
				return err
			}
			ki, err := keystore.Repo.Get(cfg.Addr.Addr, ctx.String("password"))
			if err != nil {
				return fmt.Errorf("unlock wallet %s: %w", cfg.Addr.Addr, err)
			}
			sk = ki.SK()
		}

		cli, err := chain.Dial(cctx, cfg.Chain.Endpoint)
		if err != nil {
			return err
		}
		defer cli.Close()

		auth, err := chain.MakeAuth(cli.ChainID, sk)
		if err != nil {
			return err
		}
		logger.Info("using wallet ", auth.From)

		backend := market.NewChainBackend(cli, common.HexToAddress(cfg.Contracts.Market), auth)

		var consumer settle.Consumer
		consumerAddr := common.HexToAddress(cfg.Contracts.Consumer)
		switch cfg.Contracts.ConsumerKind {
		case "evennumber":
			consumer = settle.NewEvenNumber(consumerAddr, cli.Eth)
		case "counter":
			consumer = settle.NewCounter(consumerAddr, cli.Eth)
		default:
			return fmt.Errorf("unknown consumer kind: %s", cfg.Contracts.ConsumerKind)
		}

		core := service.NewCore(
			storage.NewHTTPUploader(cfg.Storage.BaseURL),
			estimator.NewHTTPEstimator(cfg.Estimator.Endpoint),
			market.NewClient(backend),
			settle.NewDriver(consumer, cli, auth),
			auth.From,
		)

		minPerMcycle, ok := new(big.Int).SetString(ctx.String("min-mcycle"), 10)
		if !ok {
			return fmt.Errorf("bad min-mcycle value")
		}
		maxPerMcycle, ok := new(big.Int).SetString(ctx.String("max-mcycle"), 10)
		if !ok {
			return fmt.Errorf("bad max-mcycle value")
		}
		stake, ok := new(big.Int).SetString(ctx.String("stake"), 10)
		if !ok {
			return fmt.Errorf("bad stake value")
		}

		var deadline *time.Time
		if d := ctx.Uint64("deadline"); d > 0 {
			t := time.Now().Add(time.Duration(d) * time.Second)
			deadline = &t
		}

		input := utils.EncodeUint256(new(big.Int).SetUint64(ctx.Uint64("input")))
		if h := ctx.String("input-hex"); h != "" {
			input, err = utils.HexDecode(h)
			if err != nil {
				return fmt.Errorf("bad input-hex value: %w", err)
			}
		}

		res, err := core.Run(cctx, service.RunParams{
			Image:          image,
			Input:          input,
			ProgramID:      programID,
			MinPerMcycle:   minPerMcycle,
			MaxPerMcycle:   maxPerMcycle,
			RampUpPeriod:   uint32(ctx.Uint("rampup")),
			Timeout:        uint32(ctx.Uint("timeout")),
			LockinStake:    stake,
			PollInterval:   time.Duration(ctx.Uint64("poll")) * time.Second,
			Deadline:       deadline,
			ConfirmTimeout: time.Duration(ctx.Uint64("confirm")) * time.Second,
		})
		if err != nil {
			return err
		}

		fmt.Println("request id: ", res.RequestID)
		fmt.Println("journal: ", utils.HexEncode(res.Journal))
		fmt.Println("settle tx: ", res.Receipt.TxHash)
		fmt.Println("confirmed at: ", res.Receipt.ConfirmedAt.Format(time.RFC3339))

		return nil
	},
}
